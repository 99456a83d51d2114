package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/avelar/homebox/cmd/homebox/content"
	"github.com/avelar/homebox/cmd/homebox/serve"
	"github.com/avelar/homebox/cmd/homebox/user"
)

func main() {
	app := &cli.App{
		Name:  "homebox",
		Usage: "A tiny personal site with an editable hero section",
		Commands: []*cli.Command{
			serve.Cmd(),
			user.Cmd(),
			content.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
