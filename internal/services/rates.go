package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// defaultPairs is shown when the store is empty, so the dashboard has
// something to offer before the first fetch.
var defaultPairs = []string{
	"USD_to_EUR", "USD_to_GBP", "USD_to_JPY", "USD_to_AUD",
	"USD_to_CAD", "USD_to_CHF", "USD_to_CNY", "USD_to_INR",
	"EUR_to_USD", "EUR_to_GBP", "EUR_to_JPY", "GBP_to_USD",
}

// fallbackCurrencies is used when the external source cannot be reached.
var fallbackCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "INR", "KRW",
}

// SeriesStore is the read/delete slice of the rates repository used by the
// query surface.
type SeriesStore interface {
	RatesForPair(ctx context.Context, pair string) ([]models.RatePoint, error)
	DateRange(ctx context.Context) (min, max time.Time, ok bool, err error)
	KnownPairs(ctx context.Context) ([]string, error)
	DeleteAll(ctx context.Context) error
}

// LatestRatesReader is the slice of the rate source the query surface needs.
type LatestRatesReader interface {
	LatestRates(ctx context.Context, base string) (map[string]float64, error)
}

// RatesService answers the read-side questions of the dashboard: which pairs
// and currencies exist, what date range is stored, and the series of one
// pair. It also owns full data deletion.
type RatesService struct {
	store  SeriesStore
	source LatestRatesReader
	base   string
}

// NewRatesService creates the query service for the given base currency.
func NewRatesService(store SeriesStore, source LatestRatesReader, base string) *RatesService {
	return &RatesService{store: store, source: source, base: base}
}

// Pairs returns the pair columns present in stored data, or the default
// bootstrap list when the store is empty.
func (s *RatesService) Pairs(ctx context.Context) ([]string, error) {
	pairs, err := s.store.KnownPairs(ctx)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return append([]string(nil), defaultPairs...), nil
	}
	return pairs, nil
}

// Currencies returns the sorted currency codes the source quotes. A source
// failure degrades to a fallback list rather than an error.
func (s *RatesService) Currencies(ctx context.Context) ([]string, error) {
	rates, err := s.source.LatestRates(ctx, s.base)
	if err != nil {
		logger.Log.Warnw("falling back to default currency list", "error", err)
		return append([]string(nil), fallbackCurrencies...), nil
	}

	currencies := make([]string, 0, len(rates))
	for currency := range rates {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	return currencies, nil
}

// DateRange returns the stored min and max dates; ok is false when the
// store is empty.
func (s *RatesService) DateRange(ctx context.Context) (min, max time.Time, ok bool, err error) {
	return s.store.DateRange(ctx)
}

// SeriesFor returns the dated observations of one pair, or
// ErrNoDataAvailable when the pair has none.
func (s *RatesService) SeriesFor(ctx context.Context, pair string) ([]models.RatePoint, error) {
	points, err := s.store.RatesForPair(ctx, pair)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w for currency pair %s", ErrNoDataAvailable, pair)
	}
	return points, nil
}

// DeleteAll removes all persisted rate data.
func (s *RatesService) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}
