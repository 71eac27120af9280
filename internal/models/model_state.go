package models

// ModelState is the persisted artifact of a trained rolling-average model for
// one currency pair. Retraining overwrites it wholesale.
type ModelState struct {
	CurrencyPair string `json:"currency_pair"`

	// MeanRate and StdRate are population statistics over the entire cleaned
	// training series, kept for reporting. Predictions use LastRates only.
	MeanRate float64 `json:"mean_rate"`
	StdRate  float64 `json:"std_rate"`

	// LastRates holds the most recent window of training observations,
	// oldest first.
	LastRates []float64 `json:"last_rates"`

	TrainingPoints int    `json:"training_data_points"`
	TrainingStart  string `json:"training_start"` // DateLayout
	TrainingEnd    string `json:"training_end"`   // DateLayout
}
