package ridership

import (
	"math"

	"github.com/rs/zerolog/log"
)

func nan() float64 {
	return math.NaN()
}

// EnrichCoordinates attaches the station coordinate to every record by
// exact station-name lookup. Records whose station is missing from the
// table keep the NaN sentinel; the pipeline carries on regardless.
// Returns the number of records left without a coordinate.
func EnrichCoordinates(records []CleanedRecord, table CoordinateTable) int {
	unmatched := 0
	warned := map[string]bool{}

	for i := range records {
		coordinate, ok := table[records[i].Station]
		if !ok {
			unmatched++
			if !warned[records[i].Station] {
				warned[records[i].Station] = true
				log.Warn().Str("station", records[i].Station).Msg("Station missing from coordinate table")
			}
			continue
		}

		records[i].Latitude = coordinate.Latitude
		records[i].Longitude = coordinate.Longitude
	}

	return unmatched
}
