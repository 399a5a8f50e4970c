package ridership

import (
	"errors"
	"math"
	"time"

	"golang.org/x/exp/slices"
)

// ErrInvalidBucketWidth is returned when an aggregation is requested with a
// non-positive bucket width.
var ErrInvalidBucketWidth = errors.New("ridership: bucket width must be positive")

// AggregationOptions select the grouping key set and the time bucketing for
// Aggregate. With neither ByStation nor ByTurnstile set the whole network
// collapses into one group per bucket.
type AggregationOptions struct {
	ByStation   bool
	ByTurnstile bool

	// BucketWidth is the fixed bucket size, eg. 4h or 24h. Required.
	BucketWidth time.Duration

	// BucketOffset shifts the bucket grid away from the epoch-aligned
	// default, eg. a 24h width with a -5h offset buckets by New York
	// calendar day.
	BucketOffset time.Duration

	// DenseReindex zero-fills the missing buckets between each group's
	// first and last populated bucket. Off by default: empty buckets are
	// omitted.
	DenseReindex bool
}

// AggregatedBucket is the summed traffic for one group key within one time
// bucket. BucketStart is the left label: the instant the bucket begins.
type AggregatedBucket struct {
	Station     string
	Turnstile   TurnstileID
	BucketStart time.Time

	Entries int64
	Exits   int64
	Records int

	// Coordinate of the bucket's station, carried from the first record
	// seen for the key. NaN when the station had no coordinate or the
	// grouping has no station.
	Latitude  float64
	Longitude float64
}

type bucketKey struct {
	station   string
	turnstile TurnstileID
	start     int64
}

// Aggregate groups cleaned records by the selected key set and fixed-width
// time bucket and sums their entry/exit deltas. Summation over non-negative
// deltas is associative and commutative, so re-aggregating fine buckets at
// a coarser width equals aggregating the records directly at that width.
func Aggregate(records []CleanedRecord, opts AggregationOptions) ([]AggregatedBucket, error) {
	if opts.BucketWidth <= 0 {
		return nil, ErrInvalidBucketWidth
	}

	buckets := map[bucketKey]*AggregatedBucket{}

	for _, record := range records {
		start := bucketStart(record.Timestamp, opts.BucketWidth, opts.BucketOffset)

		key := bucketKey{start: start.UnixNano()}
		if opts.ByStation {
			key.station = record.Station
		}
		if opts.ByTurnstile {
			key.turnstile = record.Turnstile
		}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &AggregatedBucket{
				Station:     key.station,
				Turnstile:   key.turnstile,
				BucketStart: start,
				Latitude:    record.Latitude,
				Longitude:   record.Longitude,
			}
			buckets[key] = bucket
		} else if math.IsNaN(bucket.Latitude) && !math.IsNaN(record.Latitude) {
			bucket.Latitude = record.Latitude
			bucket.Longitude = record.Longitude
		}

		bucket.Entries += record.Entries
		bucket.Exits += record.Exits
		bucket.Records++
	}

	if opts.DenseReindex {
		densify(buckets, opts.BucketWidth)
	}

	out := make([]AggregatedBucket, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}

	slices.SortFunc(out, func(a, b AggregatedBucket) int {
		if a.Station != b.Station {
			if a.Station < b.Station {
				return -1
			}
			return 1
		}
		if a.Turnstile != b.Turnstile {
			if a.Turnstile < b.Turnstile {
				return -1
			}
			return 1
		}
		return a.BucketStart.Compare(b.BucketStart)
	})

	return out, nil
}

// bucketStart snaps t down onto the bucket grid: fixed-width, non
// overlapping intervals anchored at offset past the Unix epoch.
func bucketStart(t time.Time, width time.Duration, offset time.Duration) time.Time {
	w := width.Nanoseconds()
	n := t.UnixNano() - offset.Nanoseconds()

	rem := n % w
	if rem < 0 {
		rem += w
	}

	return time.Unix(0, n-rem+offset.Nanoseconds()).In(t.Location())
}

// densify inserts zero buckets so every group key covers a contiguous
// bucket range from its first to its last populated bucket.
func densify(buckets map[bucketKey]*AggregatedBucket, width time.Duration) {
	type groupKey struct {
		station   string
		turnstile TurnstileID
	}

	type span struct {
		min, max  int64
		latitude  float64
		longitude float64
	}

	spans := map[groupKey]*span{}
	for key, bucket := range buckets {
		g := groupKey{station: key.station, turnstile: key.turnstile}
		s, ok := spans[g]
		if !ok {
			spans[g] = &span{min: key.start, max: key.start, latitude: bucket.Latitude, longitude: bucket.Longitude}
			continue
		}
		s.min = min(s.min, key.start)
		s.max = max(s.max, key.start)
		if math.IsNaN(s.latitude) && !math.IsNaN(bucket.Latitude) {
			s.latitude = bucket.Latitude
			s.longitude = bucket.Longitude
		}
	}

	step := width.Nanoseconds()
	for g, s := range spans {
		for start := s.min; start <= s.max; start += step {
			key := bucketKey{station: g.station, turnstile: g.turnstile, start: start}
			if _, ok := buckets[key]; ok {
				continue
			}
			buckets[key] = &AggregatedBucket{
				Station:     g.station,
				Turnstile:   g.turnstile,
				BucketStart: time.Unix(0, start).UTC(),
				Latitude:    s.latitude,
				Longitude:   s.longitude,
			}
		}
	}
}
