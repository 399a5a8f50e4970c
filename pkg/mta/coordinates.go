package mta

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/faregate/faregate/pkg/ridership"
)

type stationCoordinateRow struct {
	Station   string  `csv:"STATION"`
	Latitude  float64 `csv:"LATITUDE"`
	Longitude float64 `csv:"LONGITUDE"`
}

// ParseStationCoordinates reads the station coordinate reference table.
// Station names are trimmed so they match normalized readings; the first
// row wins when a station appears twice.
func ParseStationCoordinates(reader io.Reader) (ridership.CoordinateTable, error) {
	setupCSVReader()

	var rows []stationCoordinateRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("mta: parsing station coordinates: %w", err)
	}

	table := ridership.CoordinateTable{}
	for _, row := range rows {
		station := strings.TrimSpace(row.Station)
		if station == "" {
			continue
		}

		if _, exists := table[station]; exists {
			log.Debug().Str("station", station).Msg("Duplicate station in coordinate table")
			continue
		}

		table[station] = ridership.Coordinate{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		}
	}

	return table, nil
}

// LoadStationCoordinates reads the coordinate table from a file path.
func LoadStationCoordinates(path string) (ridership.CoordinateTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mta: opening %s: %w", path, err)
	}
	defer file.Close()

	return ParseStationCoordinates(file)
}
