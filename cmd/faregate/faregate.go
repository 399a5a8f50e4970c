package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/faregate/faregate/pkg/dataimporter"
	statscli "github.com/faregate/faregate/pkg/stats/cli"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("FAREGATE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("FAREGATE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "faregate",
		Description: "Turns raw transit turnstile counter readings into cleaned per-interval ridership metrics",

		Commands: []*cli.Command{
			dataimporter.RegisterCLI(),
			statscli.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
