package mta

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/faregate/faregate/pkg/ridership"
)

const outputTimestampLayout = "2006-01-02 15:04:05"

type cleanedRow struct {
	Timestamp string `csv:"DATETIME"`
	Turnstile string `csv:"TURNSTILE_ID"`
	Station   string `csv:"STATION"`
	LineName  string `csv:"LINENAME"`
	Entries   int64  `csv:"ENTRIES"`
	Exits     int64  `csv:"EXITS"`
	Weekday   string `csv:"WEEKDAY"`
	Week      int    `csv:"WEEK"`
	Hour      int    `csv:"HOUR"`
	Latitude  string `csv:"LATITUDE"`
	Longitude string `csv:"LONGITUDE"`
}

type aggregatedRow struct {
	Station   string `csv:"STATION"`
	Turnstile string `csv:"TURNSTILE_ID"`
	Bucket    string `csv:"BUCKET"`
	Entries   int64  `csv:"ENTRIES"`
	Exits     int64  `csv:"EXITS"`
	Records   int    `csv:"RECORDS"`
	Latitude  string `csv:"LATITUDE"`
	Longitude string `csv:"LONGITUDE"`
}

type differentialRow struct {
	Station        string `csv:"STATION"`
	Latitude       string `csv:"LATITUDE"`
	Longitude      string `csv:"LONGITUDE"`
	WeekdayEntries string `csv:"WEEKDAY_ENTRIES"`
	WeekdayExits   string `csv:"WEEKDAY_EXITS"`
	WeekendEntries string `csv:"WEEKEND_ENTRIES"`
	WeekendExits   string `csv:"WEEKEND_EXITS"`
	EntryDiff      string `csv:"Entry_diffs"`
	ExitDiff       string `csv:"Exit_diffs"`
}

// WriteCleanedRecords marshals cleaned records as CSV.
func WriteCleanedRecords(writer io.Writer, records []ridership.CleanedRecord) error {
	rows := make([]cleanedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, cleanedRow{
			Timestamp: record.Timestamp.Format(outputTimestampLayout),
			Turnstile: string(record.Turnstile),
			Station:   record.Station,
			LineName:  record.LineName,
			Entries:   record.Entries,
			Exits:     record.Exits,
			Weekday:   record.Weekday.String(),
			Week:      record.Week,
			Hour:      record.Hour,
			Latitude:  formatCoordinate(record.Latitude),
			Longitude: formatCoordinate(record.Longitude),
		})
	}

	if err := gocsv.Marshal(&rows, writer); err != nil {
		return fmt.Errorf("mta: writing cleaned records: %w", err)
	}
	return nil
}

// WriteAggregatedBuckets marshals aggregated buckets as CSV. Bucket labels
// are the bucket start instants.
func WriteAggregatedBuckets(writer io.Writer, buckets []ridership.AggregatedBucket) error {
	rows := make([]aggregatedRow, 0, len(buckets))
	for _, bucket := range buckets {
		rows = append(rows, aggregatedRow{
			Station:   bucket.Station,
			Turnstile: string(bucket.Turnstile),
			Bucket:    bucket.BucketStart.Format(outputTimestampLayout),
			Entries:   bucket.Entries,
			Exits:     bucket.Exits,
			Records:   bucket.Records,
			Latitude:  formatCoordinate(bucket.Latitude),
			Longitude: formatCoordinate(bucket.Longitude),
		})
	}

	if err := gocsv.Marshal(&rows, writer); err != nil {
		return fmt.Errorf("mta: writing aggregated buckets: %w", err)
	}
	return nil
}

// WriteDifferentials marshals weekday/weekend differentials as CSV, keeping
// the Entry_diffs / Exit_diffs column names of the historical dataset.
func WriteDifferentials(writer io.Writer, differentials []ridership.DifferentialRecord) error {
	rows := make([]differentialRow, 0, len(differentials))
	for _, differential := range differentials {
		rows = append(rows, differentialRow{
			Station:        differential.Station,
			Latitude:       formatCoordinate(differential.Latitude),
			Longitude:      formatCoordinate(differential.Longitude),
			WeekdayEntries: formatMean(differential.WeekdayEntries),
			WeekdayExits:   formatMean(differential.WeekdayExits),
			WeekendEntries: formatMean(differential.WeekendEntries),
			WeekendExits:   formatMean(differential.WeekendExits),
			EntryDiff:      formatMean(differential.EntryDiff),
			ExitDiff:       formatMean(differential.ExitDiff),
		})
	}

	if err := gocsv.Marshal(&rows, writer); err != nil {
		return fmt.Errorf("mta: writing differentials: %w", err)
	}
	return nil
}

// formatCoordinate renders the NaN sentinel as an empty cell.
func formatCoordinate(value float64) string {
	if math.IsNaN(value) {
		return ""
	}
	return strconv.FormatFloat(value, 'f', 6, 64)
}

func formatMean(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
