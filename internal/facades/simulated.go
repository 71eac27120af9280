package facades

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"
)

// DefaultRateSnapshot is the built-in USD-quoted snapshot used by the
// simulated source when no live snapshot is configured.
var DefaultRateSnapshot = map[string]float64{
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 155.0,
	"AUD": 1.52,
	"CAD": 1.36,
	"CHF": 0.88,
	"CNY": 7.20,
	"INR": 83.4,
	"KRW": 1350.0,
	"SGD": 1.34,
}

// simulationEpoch anchors the yearly cycle so that a date always produces
// the same factor regardless of the fetched range.
var simulationEpoch = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

// SimulatedSource generates deterministic pseudo-historical rates from a
// fixed snapshot: a yearly sine cycle of +-10% plus seeded daily noise.
// Given the same seed, every (date, currency) replays identically, so
// overlapping fetches merge cleanly.
type SimulatedSource struct {
	snapshot map[string]float64
	seed     int64
}

// NewSimulatedSource creates a simulated source over the given snapshot.
// A nil snapshot falls back to DefaultRateSnapshot.
func NewSimulatedSource(snapshot map[string]float64, seed int64) *SimulatedSource {
	if snapshot == nil {
		snapshot = DefaultRateSnapshot
	}
	return &SimulatedSource{snapshot: snapshot, seed: seed}
}

// Name identifies the source in logs and progress messages.
func (s *SimulatedSource) Name() string { return "simulated" }

// LatestRates returns the configured snapshot.
func (s *SimulatedSource) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	rates := make(map[string]float64, len(s.snapshot)+1)
	for currency, rate := range s.snapshot {
		rates[currency] = rate
	}
	rates[base] = 1.0
	return rates, nil
}

// HistoricalRates derives the snapshot variation for one calendar day.
func (s *SimulatedSource) HistoricalRates(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
	days := date.Sub(simulationEpoch).Hours() / 24
	timeFactor := 1 + 0.1*math.Sin(days/365.0*2*math.Pi)

	// One generator per day, drawn in sorted currency order, keeps the
	// output independent of map iteration order.
	rng := rand.New(rand.NewSource(s.seed + date.Unix()))

	currencies := make([]string, 0, len(s.snapshot))
	for currency := range s.snapshot {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	rates := make(map[string]float64, len(currencies))
	for _, currency := range currencies {
		if currency == base {
			continue
		}
		noiseFactor := 1 + rng.NormFloat64()*0.02
		rates[currency] = s.snapshot[currency] * timeFactor * noiseFactor
	}
	return rates, nil
}
