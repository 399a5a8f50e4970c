package ridership

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TimestampLayout is the combined DATE + TIME format used by the source
// dataset (eg. "06/15/2019 04:00:00").
const TimestampLayout = "01/02/2006 15:04:05"

// DefaultLocation is the timezone the turnstile hardware reports in.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// NormalizeReadings trims every textual field, combines date and time-of-day
// into a single timestamp and derives the turnstile identity for each raw
// reading. Readings with blank required fields, an unparseable timestamp or
// non-numeric counters are dropped and counted; nothing here judges the
// counter values themselves.
func NormalizeReadings(raw []RawReading, loc *time.Location) ([]NormalizedReading, int) {
	if loc == nil {
		loc = DefaultLocation()
	}

	readings := make([]NormalizedReading, 0, len(raw))
	malformed := 0

	for i, reading := range raw {
		controlArea := strings.TrimSpace(reading.ControlArea)
		unit := strings.TrimSpace(reading.Unit)
		scp := strings.TrimSpace(reading.SCP)
		station := strings.TrimSpace(reading.Station)
		date := strings.TrimSpace(reading.Date)
		timeOfDay := strings.TrimSpace(reading.Time)

		if controlArea == "" || unit == "" || scp == "" || station == "" || date == "" || timeOfDay == "" {
			malformed++
			log.Debug().Int("row", i).Str("station", station).Msg("Dropping reading with blank required field")
			continue
		}

		timestamp, err := time.ParseInLocation(TimestampLayout, date+" "+timeOfDay, loc)
		if err != nil {
			malformed++
			log.Debug().Int("row", i).Str("date", date).Str("time", timeOfDay).Msg("Dropping reading with unparseable timestamp")
			continue
		}

		entries, err := strconv.ParseInt(strings.TrimSpace(reading.Entries), 10, 64)
		if err != nil {
			malformed++
			log.Debug().Int("row", i).Str("entries", reading.Entries).Msg("Dropping reading with non-numeric entry counter")
			continue
		}

		exits, err := strconv.ParseInt(strings.TrimSpace(reading.Exits), 10, 64)
		if err != nil {
			malformed++
			log.Debug().Int("row", i).Str("exits", reading.Exits).Msg("Dropping reading with non-numeric exit counter")
			continue
		}

		readings = append(readings, NormalizedReading{
			Turnstile:   NewTurnstileID(controlArea, unit, scp, station),
			Station:     station,
			LineName:    strings.TrimSpace(reading.LineName),
			Division:    strings.TrimSpace(reading.Division),
			Description: strings.TrimSpace(reading.Description),
			Timestamp:   timestamp,
			Entries:     entries,
			Exits:       exits,
		})
	}

	return readings, malformed
}
