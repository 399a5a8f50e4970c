package ridership

import (
	"errors"
	"math"
	"testing"
	"time"
)

func cleaned(station string, id TurnstileID, ts time.Time, entries int64, exits int64) CleanedRecord {
	_, week := ts.ISOWeek()
	return CleanedRecord{
		Timestamp: ts,
		Turnstile: id,
		Station:   station,
		Entries:   entries,
		Exits:     exits,
		Weekday:   ts.Weekday(),
		Week:      week,
		Hour:      ts.Hour(),
		Latitude:  math.NaN(),
		Longitude: math.NaN(),
	}
}

func TestAggregateInvalidBucketWidth(t *testing.T) {
	_, err := Aggregate(nil, AggregationOptions{ByStation: true})
	if !errors.Is(err, ErrInvalidBucketWidth) {
		t.Fatalf("expected ErrInvalidBucketWidth, got %v", err)
	}
}

func TestAggregateByStationDaily(t *testing.T) {
	day := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)

	records := []CleanedRecord{
		cleaned("59 ST", "a", day.Add(4*time.Hour), 100, 50),
		cleaned("59 ST", "b", day.Add(8*time.Hour), 200, 80),
		cleaned("59 ST", "a", day.Add(28*time.Hour), 300, 90),
		cleaned("86 ST", "c", day.Add(4*time.Hour), 40, 10),
	}

	buckets, err := Aggregate(records, AggregationOptions{
		ByStation:   true,
		BucketWidth: 24 * time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	first := buckets[0]
	if first.Station != "59 ST" || !first.BucketStart.Equal(day) {
		t.Fatalf("unexpected first bucket %q at %v", first.Station, first.BucketStart)
	}
	if first.Entries != 300 || first.Exits != 130 || first.Records != 2 {
		t.Errorf("expected summed 300/130 over 2 records, got %d/%d over %d", first.Entries, first.Exits, first.Records)
	}

	if buckets[1].Entries != 300 || !buckets[1].BucketStart.Equal(day.Add(24*time.Hour)) {
		t.Errorf("unexpected second-day bucket: %+v", buckets[1])
	}
	if buckets[2].Station != "86 ST" {
		t.Errorf("expected 86 ST last, got %q", buckets[2].Station)
	}
}

func TestAggregateLeftLabel(t *testing.T) {
	ts := time.Date(2019, 6, 10, 5, 30, 0, 0, time.UTC)

	buckets, err := Aggregate([]CleanedRecord{cleaned("59 ST", "a", ts, 1, 1)}, AggregationOptions{
		ByStation:   true,
		BucketWidth: 4 * time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2019, 6, 10, 4, 0, 0, 0, time.UTC)
	if !buckets[0].BucketStart.Equal(want) {
		t.Errorf("expected left label %v, got %v", want, buckets[0].BucketStart)
	}
}

func TestAggregateBucketOffset(t *testing.T) {
	// With a 1h offset the daily grid runs 01:00 to 01:00, so 00:30 falls
	// into the bucket starting 01:00 the previous day.
	ts := time.Date(2019, 6, 10, 0, 30, 0, 0, time.UTC)

	buckets, err := Aggregate([]CleanedRecord{cleaned("59 ST", "a", ts, 1, 1)}, AggregationOptions{
		ByStation:    true,
		BucketWidth:  24 * time.Hour,
		BucketOffset: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2019, 6, 9, 1, 0, 0, 0, time.UTC)
	if !buckets[0].BucketStart.Equal(want) {
		t.Errorf("expected bucket start %v, got %v", want, buckets[0].BucketStart)
	}
}

func TestAggregateRefinementConsistency(t *testing.T) {
	// Re-aggregating 4-hourly buckets into days must match aggregating the
	// records at a day directly.
	day := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)

	var records []CleanedRecord
	for hour := 0; hour < 48; hour += 4 {
		records = append(records, cleaned("59 ST", "a", day.Add(time.Duration(hour)*time.Hour), int64(10+hour), int64(hour)))
	}

	fine, err := Aggregate(records, AggregationOptions{ByStation: true, BucketWidth: 4 * time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	coarse, err := Aggregate(records, AggregationOptions{ByStation: true, BucketWidth: 24 * time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	refined := map[time.Time]int64{}
	for _, bucket := range fine {
		refined[bucket.BucketStart.Truncate(24*time.Hour)] += bucket.Entries
	}

	for _, bucket := range coarse {
		if refined[bucket.BucketStart] != bucket.Entries {
			t.Errorf("bucket %v: refined sum %d != direct %d", bucket.BucketStart, refined[bucket.BucketStart], bucket.Entries)
		}
	}
}

func TestAggregateDenseReindex(t *testing.T) {
	day := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)

	records := []CleanedRecord{
		cleaned("59 ST", "a", day, 10, 5),
		cleaned("59 ST", "a", day.Add(72*time.Hour), 20, 10),
	}

	sparse, err := Aggregate(records, AggregationOptions{ByStation: true, BucketWidth: 24 * time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	if len(sparse) != 2 {
		t.Fatalf("expected empty buckets omitted, got %d buckets", len(sparse))
	}

	dense, err := Aggregate(records, AggregationOptions{ByStation: true, BucketWidth: 24 * time.Hour, DenseReindex: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(dense) != 4 {
		t.Fatalf("expected 4 dense buckets, got %d", len(dense))
	}

	if dense[1].Entries != 0 || dense[1].Records != 0 {
		t.Errorf("filled bucket should be zero, got %+v", dense[1])
	}
	if !dense[1].BucketStart.Equal(day.Add(24 * time.Hour)) {
		t.Errorf("unexpected filled bucket start %v", dense[1].BucketStart)
	}
}

func TestAggregateGlobalGrouping(t *testing.T) {
	day := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)

	records := []CleanedRecord{
		cleaned("59 ST", "a", day.Add(time.Hour), 10, 5),
		cleaned("86 ST", "b", day.Add(2*time.Hour), 20, 10),
	}

	buckets, err := Aggregate(records, AggregationOptions{BucketWidth: 24 * time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	if len(buckets) != 1 {
		t.Fatalf("expected single network-wide bucket, got %d", len(buckets))
	}
	if buckets[0].Entries != 30 || buckets[0].Exits != 15 {
		t.Errorf("expected 30/15, got %d/%d", buckets[0].Entries, buckets[0].Exits)
	}
}

func TestAggregateTolerantOfMissingCoordinates(t *testing.T) {
	day := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)

	withCoordinate := cleaned("59 ST", "a", day.Add(2*time.Hour), 20, 10)
	withCoordinate.Latitude = 40.76
	withCoordinate.Longitude = -73.97

	records := []CleanedRecord{
		cleaned("59 ST", "a", day.Add(time.Hour), 10, 5),
		withCoordinate,
	}

	buckets, err := Aggregate(records, AggregationOptions{ByStation: true, BucketWidth: 24 * time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	if buckets[0].Entries != 30 {
		t.Errorf("NaN coordinate disturbed summation: %d", buckets[0].Entries)
	}
	if math.IsNaN(buckets[0].Latitude) {
		t.Error("expected coordinate backfilled from the later record")
	}
}
