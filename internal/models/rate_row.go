package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for persisted dates and all
// date fields crossing the API boundary.
const DateLayout = "2006-01-02"

// RateRow holds one calendar day of exchange rates quoted against a base
// currency. The set of pair columns is dynamic: a pair with no observation
// for this date simply has no key in Rates, it is never stored as zero.
type RateRow struct {
	Date         time.Time
	BaseCurrency string
	Rates        map[string]float64 // pair column, e.g. "USD_to_EUR" -> rate
}

// RatePoint is a single dated observation of one currency pair.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// PairName builds the column name for a quote of one currency in another.
func PairName(from, to string) string {
	return fmt.Sprintf("%s_to_%s", from, to)
}

// Day truncates a timestamp to its calendar day at UTC midnight. All dates in
// the series are normalized through it so equality checks stay exact.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
