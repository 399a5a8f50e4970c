package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/faregate/faregate/pkg/dataimporter"
	"github.com/faregate/faregate/pkg/mta"
	"github.com/faregate/faregate/pkg/ridership"
	"github.com/faregate/faregate/pkg/stats/calculator"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Derived ridership statistics",
		Subcommands: []*cli.Command{
			{
				Name:  "commuters",
				Usage: "Rank stations by weekday-vs-weekend traffic differential",
				Flags: append(dataimporter.InputFlags(),
					&cli.IntFlag{
						Name:     "week",
						Usage:    "ISO week number to analyse",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of stations to report",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "bottom",
						Usage: "Report the least commuter-heavy stations instead",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the ranked differentials to this CSV file",
					},
				),
				Action: func(c *cli.Context) error {
					records, _, err := dataimporter.RunFromFlags(c)
					if err != nil {
						return err
					}

					ranking := calculator.RankCommuterStations(records, c.Int("week"), c.Int("top"), c.Bool("bottom"))

					if len(ranking.Stations) == 0 {
						log.Warn().Int("week", ranking.Week).Msg("No records for requested week")
						return nil
					}

					for _, station := range ranking.Stations {
						fmt.Printf("%3d  %-24s  entries %10.2f  exits %10.2f\n",
							station.Rank, station.Station, station.EntryDiff, station.ExitDiff)
					}

					if path := c.String("out"); path != "" {
						differentials := make([]ridership.DifferentialRecord, 0, len(ranking.Stations))
						for _, station := range ranking.Stations {
							differentials = append(differentials, station.DifferentialRecord)
						}

						file, err := os.Create(path)
						if err != nil {
							return fmt.Errorf("creating %s: %w", path, err)
						}
						defer file.Close()

						if err := mta.WriteDifferentials(file, differentials); err != nil {
							return err
						}
						log.Info().Str("file", path).Int("stations", len(differentials)).Msg("Wrote differentials")
					}

					return nil
				},
			},
		},
	}
}
