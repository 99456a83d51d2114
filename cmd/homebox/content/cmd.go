package content

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/avelar/homebox/hero"
	"github.com/avelar/homebox/internal/cmdflags"
	"github.com/avelar/homebox/sitedb"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "Inspect or reset the home content",
		Subcommands: []*cli.Command{
			showCmd(),
			resetCmd(),
		},
	}
}

func showCmd() *cli.Command {
	var dbPath string
	return &cli.Command{
		Name:  "show",
		Usage: "Print the stored start quote document and subtitle",
		Flags: []cli.Flag{
			cmdflags.SiteDB(&dbPath),
		},
		Action: func(ctx *cli.Context) error {
			db, err := sitedb.Open(ctx.Context, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			row, err := db.GetHomeContent(ctx.Context)
			if err != nil {
				return err
			}
			fmt.Println(row.StartQuoteDoc)
			fmt.Println(row.HeroSubtitle)
			return nil
		},
	}
}

func resetCmd() *cli.Command {
	var dbPath string
	return &cli.Command{
		Name:  "reset",
		Usage: "Restore the default start quote and subtitle",
		Flags: []cli.Flag{
			cmdflags.SiteDB(&dbPath),
		},
		Action: func(ctx *cli.Context) error {
			db, err := sitedb.Open(ctx.Context, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.UpsertHomeContent(ctx.Context, hero.DefaultDoc().JSON(), hero.DefaultSubtitle)
		},
	}
}
