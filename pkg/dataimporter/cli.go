// Package dataimporter wires the turnstile dataset files into the
// ridership pipeline from the command line.
package dataimporter

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/faregate/faregate/pkg/config"
	"github.com/faregate/faregate/pkg/mta"
	"github.com/faregate/faregate/pkg/ridership"
)

// InputFlags are the dataset flags shared by every command that runs the
// pipeline.
func InputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "turnstile-file",
			Usage:    "Weekly turnstile CSV file, repeatable",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "coordinates-file",
			Usage: "Station coordinate CSV file",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Pipeline configuration YAML file",
		},
		&cli.Int64Flag{
			Name:  "anomaly-ceiling",
			Usage: "Largest per-interval delta accepted as real traffic",
		},
	}
}

// RunFromFlags loads the configured dataset files and runs the pipeline.
func RunFromFlags(c *cli.Context) (ridership.RecordSet, config.PipelineConfig, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, cfg, err
		}
	}
	if c.IsSet("anomaly-ceiling") {
		cfg.AnomalyCeiling = c.Int64("anomaly-ceiling")
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, cfg, err
	}

	readings, err := mta.ParseTurnstileFiles(c.StringSlice("turnstile-file"))
	if err != nil {
		return nil, cfg, err
	}

	var coordinates ridership.CoordinateTable
	if path := c.String("coordinates-file"); path != "" {
		coordinates, err = mta.LoadStationCoordinates(path)
		if err != nil {
			return nil, cfg, err
		}
	}

	records, _, err := ridership.RunPipeline(readings, coordinates, ridership.PipelineOptions{
		Location: location,
		Delta: ridership.DeltaOptions{
			AnomalyCeiling: cfg.AnomalyCeiling,
			MaxConcurrency: cfg.MaxConcurrency,
		},
	})
	if err != nil {
		return nil, cfg, err
	}

	return records, cfg, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Convert raw turnstile counter files into cleaned ridership records",
		Flags: append(InputFlags(),
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write cleaned records to this CSV file",
			},
			&cli.StringFlag{
				Name:  "aggregate-out",
				Usage: "Write aggregated buckets to this CSV file",
			},
			&cli.DurationFlag{
				Name:  "bucket",
				Usage: "Aggregation bucket width, eg. 4h or 24h",
			},
			&cli.DurationFlag{
				Name:  "offset",
				Usage: "Bucket grid offset from the epoch",
			},
			&cli.BoolFlag{
				Name:  "by-station",
				Usage: "Group aggregation by station",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "by-turnstile",
				Usage: "Group aggregation by turnstile identity",
			},
			&cli.BoolFlag{
				Name:  "dense",
				Usage: "Zero-fill empty buckets between each group's first and last",
			},
		),
		Action: func(c *cli.Context) error {
			records, cfg, err := RunFromFlags(c)
			if err != nil {
				return err
			}

			if path := c.String("out"); path != "" {
				if err := writeCSV(path, func(f *os.File) error {
					return mta.WriteCleanedRecords(f, records)
				}); err != nil {
					return err
				}
				log.Info().Str("file", path).Int("records", len(records)).Msg("Wrote cleaned records")
			}

			if path := c.String("aggregate-out"); path != "" {
				width, offset, err := bucketGrid(c, cfg)
				if err != nil {
					return err
				}

				buckets, err := ridership.Aggregate(records, ridership.AggregationOptions{
					ByStation:    c.Bool("by-station"),
					ByTurnstile:  c.Bool("by-turnstile"),
					BucketWidth:  width,
					BucketOffset: offset,
					DenseReindex: c.Bool("dense"),
				})
				if err != nil {
					return err
				}

				if err := writeCSV(path, func(f *os.File) error {
					return mta.WriteAggregatedBuckets(f, buckets)
				}); err != nil {
					return err
				}
				log.Info().Str("file", path).Int("buckets", len(buckets)).Msg("Wrote aggregated buckets")
			}

			return nil
		},
	}
}

func bucketGrid(c *cli.Context, cfg config.PipelineConfig) (time.Duration, time.Duration, error) {
	width := c.Duration("bucket")
	if width == 0 {
		var err error
		width, err = cfg.Bucket()
		if err != nil {
			return 0, 0, err
		}
	}

	offset := c.Duration("offset")
	if !c.IsSet("offset") {
		var err error
		offset, err = cfg.Offset()
		if err != nil {
			return 0, 0, err
		}
	}

	return width, offset, nil
}

func writeCSV(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	return write(file)
}
