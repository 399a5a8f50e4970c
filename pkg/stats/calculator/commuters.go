package calculator

import (
	"golang.org/x/exp/slices"

	"github.com/faregate/faregate/pkg/ridership"
)

// RankedStation is one station's position in a commuter-intensity ranking.
type RankedStation struct {
	Rank int
	ridership.DifferentialRecord
}

// CommuterRanking ranks stations for one week by their weekday-minus-weekend
// entry differential, the proxy for commuter-driven usage.
type CommuterRanking struct {
	Week     int
	Stations []RankedStation
}

// RankCommuterStations computes the weekday/weekend differentials for the
// given ISO week and returns the limit most commuter-heavy stations, or the
// least when bottom is set. A non-positive limit keeps every station.
func RankCommuterStations(records []ridership.CleanedRecord, week int, limit int, bottom bool) CommuterRanking {
	differentials := ridership.WeekdayWeekendDifferentials(records, week)

	slices.SortStableFunc(differentials, func(a, b ridership.DifferentialRecord) int {
		switch {
		case a.EntryDiff == b.EntryDiff:
			return 0
		case bottom == (a.EntryDiff < b.EntryDiff):
			return -1
		default:
			return 1
		}
	})

	if limit > 0 && limit < len(differentials) {
		differentials = differentials[:limit]
	}

	ranking := CommuterRanking{Week: week}
	for i, differential := range differentials {
		ranking.Stations = append(ranking.Stations, RankedStation{
			Rank:               i + 1,
			DifferentialRecord: differential,
		})
	}

	return ranking
}
