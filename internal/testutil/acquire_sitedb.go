package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/avelar/homebox/sitedb"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireSiteDB opens a fresh sqlite site database in a temporary
// directory and returns it with a cleanup func.
func AcquireSiteDB(ctx context.Context, t TestLog) (*sitedb.DB, func()) {
	dir, err := os.MkdirTemp("", "homebox-tests")
	if err != nil {
		t.Fatal(err)
	}
	db, err := sitedb.Open(ctx, filepath.Join(dir, "site.db"))
	if err != nil {
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close site database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
