package sitedb

import (
	"fmt"

	"github.com/avelar/homebox/auth"
)

type (
	// NotFound marks a lookup miss for one kind of row. It unwraps to
	// auth.ErrNotFound so the auth core can branch on misses without
	// knowing this package.
	NotFound struct {
		Kind string
	}
)

func (n NotFound) Error() string {
	return fmt.Sprintf("%v not found", n.Kind)
}

func (n NotFound) Unwrap() error {
	return auth.ErrNotFound
}
