package models

import (
	"fmt"
	"time"
)

// PredictionLogEntry is one line of the append-only prediction audit log.
// A single entry is written per predict call, not per predicted day.
type PredictionLogEntry struct {
	Timestamp      time.Time
	CurrencyPair   string
	PredictionDate time.Time
	DaysAhead      int
	PredictedRate  float64
	ModelType      string
}

// String renders the entry as a single timestamped log line.
func (e PredictionLogEntry) String() string {
	return fmt.Sprintf("%s - PREDICTION: currency_pair=%s prediction_date=%s days_ahead=%d predicted_rate=%.6f model_type=%s",
		e.Timestamp.UTC().Format(time.RFC3339),
		e.CurrencyPair,
		e.PredictionDate.Format(DateLayout),
		e.DaysAhead,
		e.PredictedRate,
		e.ModelType,
	)
}
