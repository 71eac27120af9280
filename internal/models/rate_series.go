package models

import (
	"sort"
	"strings"
	"time"
)

// RateSeries is a date-ordered collection of rate rows, unique on date.
// Every mutation goes through Merge, which restores both invariants.
type RateSeries []RateRow

// Merge combines the series with newRows. Duplicate dates collapse to a
// single row with the freshly merged input winning, and the result is sorted
// ascending by date.
func (s RateSeries) Merge(newRows []RateRow) RateSeries {
	byDate := make(map[time.Time]RateRow, len(s)+len(newRows))
	for _, row := range s {
		byDate[Day(row.Date)] = row
	}
	for _, row := range newRows {
		row.Date = Day(row.Date)
		byDate[row.Date] = row
	}

	merged := make(RateSeries, 0, len(byDate))
	for _, row := range byDate {
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

// RatesForPair extracts the ordered (date, rate) observations of one pair
// column. Rows without the column are excluded; an unknown pair yields an
// empty result.
func (s RateSeries) RatesForPair(pair string) []RatePoint {
	points := make([]RatePoint, 0, len(s))
	for _, row := range s {
		if rate, ok := row.Rates[pair]; ok {
			points = append(points, RatePoint{Date: row.Date, Rate: rate})
		}
	}
	return points
}

// Pairs returns the sorted set of pair columns present anywhere in the series.
func (s RateSeries) Pairs() []string {
	seen := make(map[string]struct{})
	for _, row := range s {
		for col := range row.Rates {
			if strings.Contains(col, "_to_") {
				seen[col] = struct{}{}
			}
		}
	}
	pairs := make([]string, 0, len(seen))
	for col := range seen {
		pairs = append(pairs, col)
	}
	sort.Strings(pairs)
	return pairs
}

// DateRange returns the minimum and maximum dates of the series. ok is false
// when the series is empty.
func (s RateSeries) DateRange() (min, max time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s[0].Date, s[len(s)-1].Date, true
}
