package ridership

import (
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// DefaultAnomalyCeiling is the largest per-interval delta accepted as
	// plausible traffic. Counter rollover shows up as an enormous positive
	// delta, so anything above this is rejected alongside the negative
	// deltas produced by counter resets.
	DefaultAnomalyCeiling int64 = 10000

	// DefaultMaxConcurrency bounds the per-turnstile worker fan-out.
	DefaultMaxConcurrency = 8
)

// DeltaOptions control the anomaly policy of ComputeDeltas. The zero value
// selects the defaults.
type DeltaOptions struct {
	// AnomalyCeiling is inclusive: a delta equal to the ceiling passes,
	// anything above it is dropped.
	AnomalyCeiling int64

	MaxConcurrency int
}

// DeltaStats counts what ComputeDeltas dropped and why.
type DeltaStats struct {
	Groups              int
	DuplicateTimestamps int
	NegativeDeltas      int
	CeilingExceeded     int
	GroupHeads          int
}

func (s *DeltaStats) merge(other DeltaStats) {
	s.Groups += other.Groups
	s.DuplicateTimestamps += other.DuplicateTimestamps
	s.NegativeDeltas += other.NegativeDeltas
	s.CeilingExceeded += other.CeilingExceeded
	s.GroupHeads += other.GroupHeads
}

type groupResult struct {
	records []CleanedRecord
	stats   DeltaStats
}

// ComputeDeltas converts cumulative counter readings into per-interval
// entry/exit counts, independently per turnstile identity.
//
// Within each identity the readings are time-sorted, duplicate timestamps
// are collapsed to their first occurrence, and each surviving consecutive
// pair yields one CleanedRecord timestamped at the later reading. A pair
// whose entry or exit delta is negative (counter reset) or above the
// anomaly ceiling (counter rollover) is dropped. The first reading of every
// group has no predecessor and produces nothing; a group with fewer than
// two readings produces nothing at all.
//
// Groups are processed concurrently and merged by concatenation; the final
// record order is (turnstile, timestamp) ascending.
func ComputeDeltas(readings []NormalizedReading, opts DeltaOptions) ([]CleanedRecord, DeltaStats) {
	if opts.AnomalyCeiling == 0 {
		opts.AnomalyCeiling = DefaultAnomalyCeiling
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}

	groups := map[TurnstileID][]NormalizedReading{}
	for _, reading := range readings {
		groups[reading.Turnstile] = append(groups[reading.Turnstile], reading)
	}

	p := pool.NewWithResults[groupResult]()
	p.WithMaxGoroutines(opts.MaxConcurrency)

	for _, identity := range maps.Keys(groups) {
		group := groups[identity]
		p.Go(func() groupResult {
			return computeGroupDeltas(group, opts.AnomalyCeiling)
		})
	}

	var records []CleanedRecord
	var stats DeltaStats
	for _, result := range p.Wait() {
		records = append(records, result.records...)
		stats.merge(result.stats)
	}

	slices.SortFunc(records, func(a, b CleanedRecord) int {
		if a.Turnstile != b.Turnstile {
			if a.Turnstile < b.Turnstile {
				return -1
			}
			return 1
		}
		return a.Timestamp.Compare(b.Timestamp)
	})

	return records, stats
}

func computeGroupDeltas(group []NormalizedReading, ceiling int64) groupResult {
	result := groupResult{stats: DeltaStats{Groups: 1}}

	slices.SortStableFunc(group, func(a, b NormalizedReading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	// Collapse duplicate timestamps, first occurrence wins.
	deduped := group[:0:0]
	for i, reading := range group {
		if i > 0 && reading.Timestamp.Equal(group[i-1].Timestamp) {
			result.stats.DuplicateTimestamps++
			continue
		}
		deduped = append(deduped, reading)
	}

	if len(deduped) > 0 {
		result.stats.GroupHeads++
	}

	for i := 1; i < len(deduped); i++ {
		prev := deduped[i-1]
		curr := deduped[i]

		entryDelta := curr.Entries - prev.Entries
		exitDelta := curr.Exits - prev.Exits

		if entryDelta < 0 || exitDelta < 0 {
			result.stats.NegativeDeltas++
			log.Debug().
				Str("turnstile", string(curr.Turnstile)).
				Time("timestamp", curr.Timestamp).
				Int64("entryDelta", entryDelta).
				Int64("exitDelta", exitDelta).
				Msg("Dropping negative delta (counter reset)")
			continue
		}

		if entryDelta > ceiling || exitDelta > ceiling {
			result.stats.CeilingExceeded++
			log.Debug().
				Str("turnstile", string(curr.Turnstile)).
				Time("timestamp", curr.Timestamp).
				Int64("entryDelta", entryDelta).
				Int64("exitDelta", exitDelta).
				Msg("Dropping implausibly large delta (counter rollover)")
			continue
		}

		_, week := curr.Timestamp.ISOWeek()
		result.records = append(result.records, CleanedRecord{
			Timestamp: curr.Timestamp,
			Turnstile: curr.Turnstile,
			Station:   curr.Station,
			LineName:  curr.LineName,
			Entries:   entryDelta,
			Exits:     exitDelta,
			Weekday:   curr.Timestamp.Weekday(),
			Week:      week,
			Hour:      curr.Timestamp.Hour(),
			Latitude:  nan(),
			Longitude: nan(),
		})
	}

	return result
}
