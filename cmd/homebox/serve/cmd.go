package serve

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/avelar/homebox/auth/passwd"
	"github.com/avelar/homebox/internal/cmdflags"
	"github.com/avelar/homebox/internal/httpserver"
	"github.com/avelar/homebox/internal/logutil"
	"github.com/avelar/homebox/site"
	"github.com/avelar/homebox/sitedb"
)

const (
	pruneInterval  = time.Hour
	pruneRetention = 30 * 24 * time.Hour
)

func Cmd() *cli.Command {
	var dbPath string
	var bind string
	var production bool
	var trustProxy bool
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the site over HTTP",
		Flags: []cli.Flag{
			cmdflags.SiteDB(&dbPath),
			cmdflags.Bind(&bind),
			cmdflags.Production(&production),
			cmdflags.TrustProxy(&trustProxy),
		},
		Action: func(ctx *cli.Context) error {
			db, err := sitedb.Open(ctx.Context, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			hasher, err := passwd.NewHasher()
			if err != nil {
				return err
			}
			s, err := site.New(db, hasher, site.Config{
				Production: production,
				TrustProxy: trustProxy,
			})
			if err != nil {
				return err
			}
			go pruneLoginAttempts(ctx.Context, db)
			handler := logutil.RequestLogger(log.Logger, s.Handler())
			return httpserver.Serve(ctx.Context, bind, handler)
		},
	}
}

// pruneLoginAttempts periodically drops idle throttle rows so the
// login_attempts table does not grow without bound.
func pruneLoginAttempts(ctx context.Context, db *sitedb.DB) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PruneLoginAttempts(ctx, time.Now().Add(-pruneRetention))
			if err != nil {
				log.Warn().Err(err).Msg("Unable to prune login attempts")
				continue
			}
			if n > 0 {
				log.Info().Int64("rows", n).Msg("Pruned idle login attempts")
			}
		}
	}
}
