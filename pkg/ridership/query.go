package ridership

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/faregate/faregate/pkg/util"
)

// RecordSet is a queryable batch of cleaned records.
type RecordSet []CleanedRecord

// RecordFilter narrows a RecordSet. Zero-valued fields are unconstrained;
// the time range is half-open [From, To).
type RecordFilter struct {
	Station   string
	Turnstile TurnstileID
	From      time.Time
	To        time.Time
}

// Filter returns the records matching every constraint, in their original
// order. The receiver is left untouched.
func (rs RecordSet) Filter(f RecordFilter) RecordSet {
	return RecordSet(util.Filter([]CleanedRecord(rs), func(r CleanedRecord) bool {
		if f.Station != "" && r.Station != f.Station {
			return false
		}
		if f.Turnstile != "" && r.Turnstile != f.Turnstile {
			return false
		}
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && !r.Timestamp.Before(f.To) {
			return false
		}
		return true
	}))
}

// Stations returns the distinct station names present in the set, sorted.
func (rs RecordSet) Stations() []string {
	seen := map[string]bool{}
	var stations []string
	for _, record := range rs {
		if !seen[record.Station] {
			seen[record.Station] = true
			stations = append(stations, record.Station)
		}
	}

	slices.Sort(stations)

	return stations
}
