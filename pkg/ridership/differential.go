package ridership

import (
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DifferentialRecord is the weekday-vs-weekend traffic summary for one
// station within a single week: the mean daily entries/exits for each
// partition and their difference. A large positive EntryDiff marks a
// station whose traffic is commuter-driven.
type DifferentialRecord struct {
	Station   string
	Latitude  float64
	Longitude float64

	WeekdayEntries float64
	WeekdayExits   float64
	WeekendEntries float64
	WeekendExits   float64

	EntryDiff float64
	ExitDiff  float64

	WeekdayDays int
	WeekendDays int
}

// IsWeekend classifies Saturday and Sunday as weekend, everything else as
// weekday.
func IsWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

// WeekdayWeekendDifferentials restricts records to the given ISO week
// number, totals each station's traffic per calendar day, averages the day
// totals separately over the weekday and weekend partitions and returns the
// weekday-minus-weekend differential per station.
//
// A station with records in only one partition treats the missing
// partition's mean as zero, so weekday-only stations report their weekday
// mean as the differential and weekend-only stations report a negative one.
// Output is sorted by station name; ranking is the caller's concern.
func WeekdayWeekendDifferentials(records []CleanedRecord, week int) []DifferentialRecord {
	type dayKey struct {
		station string
		weekday time.Weekday
	}

	type dayTotal struct {
		entries int64
		exits   int64
	}

	days := map[dayKey]*dayTotal{}
	coordinates := map[string]Coordinate{}

	for _, record := range records {
		if record.Week != week {
			continue
		}

		key := dayKey{station: record.Station, weekday: record.Weekday}
		total, ok := days[key]
		if !ok {
			total = &dayTotal{}
			days[key] = total
		}
		total.entries += record.Entries
		total.exits += record.Exits

		if _, ok := coordinates[record.Station]; !ok && record.HasCoordinate() {
			coordinates[record.Station] = Coordinate{Latitude: record.Latitude, Longitude: record.Longitude}
		}
	}

	type partitionSums struct {
		weekdayEntries int64
		weekdayExits   int64
		weekdayDays    int
		weekendEntries int64
		weekendExits   int64
		weekendDays    int
	}

	stations := map[string]*partitionSums{}
	for key, total := range days {
		sums, ok := stations[key.station]
		if !ok {
			sums = &partitionSums{}
			stations[key.station] = sums
		}
		if IsWeekend(key.weekday) {
			sums.weekendEntries += total.entries
			sums.weekendExits += total.exits
			sums.weekendDays++
		} else {
			sums.weekdayEntries += total.entries
			sums.weekdayExits += total.exits
			sums.weekdayDays++
		}
	}

	out := make([]DifferentialRecord, 0, len(stations))
	for _, station := range maps.Keys(stations) {
		sums := stations[station]

		record := DifferentialRecord{
			Station:     station,
			Latitude:    nan(),
			Longitude:   nan(),
			WeekdayDays: sums.weekdayDays,
			WeekendDays: sums.weekendDays,
		}

		if coordinate, ok := coordinates[station]; ok {
			record.Latitude = coordinate.Latitude
			record.Longitude = coordinate.Longitude
		}

		// A partition with no days contributes a zero mean.
		if sums.weekdayDays > 0 {
			record.WeekdayEntries = float64(sums.weekdayEntries) / float64(sums.weekdayDays)
			record.WeekdayExits = float64(sums.weekdayExits) / float64(sums.weekdayDays)
		}
		if sums.weekendDays > 0 {
			record.WeekendEntries = float64(sums.weekendEntries) / float64(sums.weekendDays)
			record.WeekendExits = float64(sums.weekendExits) / float64(sums.weekendDays)
		}

		record.EntryDiff = record.WeekdayEntries - record.WeekendEntries
		record.ExitDiff = record.WeekdayExits - record.WeekendExits

		out = append(out, record)
	}

	slices.SortFunc(out, func(a, b DifferentialRecord) int {
		if a.Station < b.Station {
			return -1
		}
		if a.Station > b.Station {
			return 1
		}
		return 0
	})

	return out
}
