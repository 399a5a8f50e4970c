// Package ridership turns raw cumulative turnstile counter readings into
// cleaned per-interval entry/exit records, and derives aggregated buckets
// and weekday-vs-weekend traffic differentials from them.
package ridership

import (
	"fmt"
	"math"
	"time"
)

// TurnstileID uniquely identifies one physical counter device. Two readings
// with the same identity are temporally ordered samples of the same
// cumulative counter.
type TurnstileID string

// NewTurnstileID builds the identity key from the control area, remote unit,
// subunit-channel-position code and station name.
func NewTurnstileID(controlArea string, unit string, scp string, station string) TurnstileID {
	return TurnstileID(fmt.Sprintf("%s_%s_%s_%s", controlArea, unit, scp, station))
}

// RawReading is one hardware sample as it arrives from the source dataset.
// All fields are untrimmed text; the normalizer owns parsing and validation.
type RawReading struct {
	ControlArea string
	Unit        string
	SCP         string
	Station     string
	LineName    string
	Division    string
	Date        string
	Time        string
	Description string
	Entries     string
	Exits       string
}

// NormalizedReading is a RawReading with trimmed fields, a combined
// timestamp and a turnstile identity. Counters are still cumulative.
type NormalizedReading struct {
	Turnstile   TurnstileID
	Station     string
	LineName    string
	Division    string
	Description string
	Timestamp   time.Time
	Entries     int64
	Exits       int64
}

// CleanedRecord is one per-interval observation: the traffic through a
// single turnstile between two consecutive counter readings, timestamped at
// the later reading. Never mutated after creation, only aggregated.
type CleanedRecord struct {
	Timestamp time.Time
	Turnstile TurnstileID
	Station   string
	LineName  string

	Entries int64
	Exits   int64

	Weekday time.Weekday
	Week    int
	Hour    int

	Latitude  float64
	Longitude float64
}

// HasCoordinate reports whether the record carries a real station
// coordinate rather than the not-found sentinel.
func (r CleanedRecord) HasCoordinate() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// Coordinate is a station position from the static reference table.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// CoordinateTable maps station name to its position. Lookup is by exact
// name match against the normalized (trimmed) station field.
type CoordinateTable map[string]Coordinate
