package facades

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedSource_Reproducible(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	a := NewSimulatedSource(nil, 42)
	b := NewSimulatedSource(nil, 42)

	first, err := a.HistoricalRates(ctx, "USD", date)
	require.NoError(t, err)
	second, err := b.HistoricalRates(ctx, "USD", date)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed and date must replay identically")

	// Refetching the same date on the same instance agrees too.
	again, err := a.HistoricalRates(ctx, "USD", date)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSimulatedSource_SeedChangesOutput(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	first, err := NewSimulatedSource(nil, 42).HistoricalRates(ctx, "USD", date)
	require.NoError(t, err)
	second, err := NewSimulatedSource(nil, 7).HistoricalRates(ctx, "USD", date)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSimulatedSource_RatesStayNearSnapshot(t *testing.T) {
	ctx := context.Background()
	src := NewSimulatedSource(map[string]float64{"EUR": 0.92}, 42)

	for i := 0; i < 30; i++ {
		date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		rates, err := src.HistoricalRates(ctx, "USD", date)
		require.NoError(t, err)

		rate := rates["EUR"]
		assert.Greater(t, rate, 0.92*0.8)
		assert.Less(t, rate, 0.92*1.2)
	}
}

func TestSimulatedSource_LatestRatesIncludesBase(t *testing.T) {
	src := NewSimulatedSource(map[string]float64{"EUR": 0.92}, 42)

	rates, err := src.LatestRates(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates["USD"])
	assert.Equal(t, 0.92, rates["EUR"])
}

func TestSimulatedSource_BaseExcludedFromHistorical(t *testing.T) {
	src := NewSimulatedSource(map[string]float64{"EUR": 0.92, "USD": 1.0}, 42)

	rates, err := src.HistoricalRates(context.Background(), "USD", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, ok := rates["USD"]
	assert.False(t, ok, "base currency is not quoted against itself")
}
