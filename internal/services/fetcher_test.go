package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-rate-predictor/internal/facades"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// fakeSource implements RateSource with controllable behavior per date.
type fakeSource struct {
	latest     func(ctx context.Context, base string) (map[string]float64, error)
	historical func(ctx context.Context, base string, date time.Time) (map[string]float64, error)
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	return f.latest(ctx, base)
}

func (f *fakeSource) HistoricalRates(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
	return f.historical(ctx, base, date)
}

// memStore implements SeriesMerger in memory.
type memStore struct {
	mu     sync.Mutex
	series models.RateSeries
}

func (m *memStore) Load(ctx context.Context) (models.RateSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.series, nil
}

func (m *memStore) Merge(ctx context.Context, newRows []models.RateRow) (models.RateSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = m.series.Merge(newRows)
	return m.series, nil
}

func testDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func newTestFetchService(source RateSource, store SeriesMerger) *FetchService {
	return NewFetchService(source, store, "USD", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 0)
}

func TestFetchService_FetchRange_SkipsMissingDates(t *testing.T) {
	missing := testDay(t, "2025-01-03")
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			if date.Equal(missing) {
				return nil, facades.ErrNotAvailable
			}
			return map[string]float64{"EUR": 0.9}, nil
		},
	}
	svc := newTestFetchService(source, &memStore{})

	var percents []float64
	rows, err := svc.FetchRange(context.Background(), testDay(t, "2025-01-01"), testDay(t, "2025-01-05"),
		func(p float64, _ string) { percents = append(percents, p) })

	require.NoError(t, err, "a missing date must not abort the range")
	assert.Len(t, rows, 4, "5-day range with one missing day yields 4 rows")

	require.Len(t, percents, 5, "progress fires for skipped units too")
	assert.Equal(t, 100.0, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress is non-decreasing")
	}
}

func TestFetchService_FetchRange_InvalidKeyHalts(t *testing.T) {
	calls := 0
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			calls++
			if calls == 1 {
				return map[string]float64{"EUR": 0.9}, nil
			}
			return nil, facades.ErrInvalidAPIKey
		},
	}
	svc := newTestFetchService(source, &memStore{})

	rows, err := svc.FetchRange(context.Background(), testDay(t, "2025-01-01"), testDay(t, "2025-01-05"), nil)

	require.ErrorIs(t, err, facades.ErrInvalidAPIKey)
	assert.Len(t, rows, 1, "rows fetched before the halt are kept")
	assert.Equal(t, 2, calls, "no further dates are requested after a credential failure")
}

func TestFetchService_FetchRange_InverseRates(t *testing.T) {
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			return map[string]float64{"EUR": 0.8, "XXX": 0, "USD": 1}, nil
		},
	}
	svc := newTestFetchService(source, &memStore{})

	rows, err := svc.FetchRange(context.Background(), testDay(t, "2025-01-01"), testDay(t, "2025-01-01"), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rates := rows[0].Rates
	assert.Equal(t, 0.8, rates["USD_to_EUR"])
	assert.InDelta(t, 1.25, rates["EUR_to_USD"], 1e-12, "inverse is derived as 1/rate")

	assert.Equal(t, 0.0, rates["USD_to_XXX"])
	_, ok := rates["XXX_to_USD"]
	assert.False(t, ok, "zero rate must not produce an inverse")

	_, ok = rates["USD_to_USD"]
	assert.False(t, ok, "base is not paired with itself")
}

func TestFetchService_FetchRange_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return map[string]float64{"EUR": 0.9}, nil
		},
	}
	svc := newTestFetchService(source, &memStore{})

	rows, err := svc.FetchRange(ctx, testDay(t, "2025-01-01"), testDay(t, "2025-01-10"), nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, rows, 2, "cancellation is honored between per-date units")
}

func TestFetchService_UpdateToLatest_Bootstrap(t *testing.T) {
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			return map[string]float64{"EUR": 0.9}, nil
		},
	}
	store := &memStore{}
	svc := NewFetchService(source, store, "USD", testDay(t, "2025-01-01"), 0)
	svc.now = func() time.Time { return testDay(t, "2025-01-05") }

	series, err := svc.UpdateToLatest(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, series, 5, "empty store bootstraps from the configured earliest date to today")

	min, max, ok := series.DateRange()
	require.True(t, ok)
	assert.Equal(t, testDay(t, "2025-01-01"), min)
	assert.Equal(t, testDay(t, "2025-01-05"), max)
}

func TestFetchService_UpdateToLatest_FetchesOnlyTheGap(t *testing.T) {
	var requested []time.Time
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			requested = append(requested, date)
			return map[string]float64{"EUR": 0.9}, nil
		},
	}
	store := &memStore{}
	_, err := store.Merge(context.Background(), []models.RateRow{
		{Date: testDay(t, "2025-01-01"), BaseCurrency: "USD", Rates: map[string]float64{"USD_to_EUR": 0.9}},
		{Date: testDay(t, "2025-01-03"), BaseCurrency: "USD", Rates: map[string]float64{"USD_to_EUR": 0.9}},
	})
	require.NoError(t, err)

	svc := NewFetchService(source, store, "USD", testDay(t, "2020-01-01"), 0)
	svc.now = func() time.Time { return testDay(t, "2025-01-05") }

	series, err := svc.UpdateToLatest(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, requested, 2)
	assert.Equal(t, testDay(t, "2025-01-04"), requested[0])
	assert.Equal(t, testDay(t, "2025-01-05"), requested[1])
	assert.Len(t, series, 4)
}

func TestFetchService_UpdateToLatest_NoGap(t *testing.T) {
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			t.Fatal("source must not be called when the store is current")
			return nil, nil
		},
	}
	store := &memStore{}
	_, err := store.Merge(context.Background(), []models.RateRow{
		{Date: testDay(t, "2025-01-05"), BaseCurrency: "USD", Rates: map[string]float64{"USD_to_EUR": 0.9}},
	})
	require.NoError(t, err)

	svc := NewFetchService(source, store, "USD", testDay(t, "2020-01-01"), 0)
	svc.now = func() time.Time { return testDay(t, "2025-01-05") }

	series, err := svc.UpdateToLatest(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, series, 1, "series is returned unchanged")
}

func TestFetchService_Start_SingleFlight(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			<-gate
			return map[string]float64{"EUR": 0.9}, nil
		},
	}
	store := &memStore{}
	svc := NewFetchService(source, store, "USD", testDay(t, "2025-01-01"), 0)
	svc.now = func() time.Time { return testDay(t, "2025-01-03") }

	taskID, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, taskID.String(), "00000000-0000-0000-0000-000000000000")

	_, err = svc.Start(context.Background())
	require.ErrorIs(t, err, ErrFetchInProgress, "a second fetch while one is in flight is rejected")

	assert.Equal(t, models.FetchStatusFetching, svc.Progress().Status)

	close(gate)
	require.Eventually(t, func() bool {
		return svc.Progress().Status == models.FetchStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	snap := svc.Progress()
	assert.Equal(t, 100.0, snap.Percent)

	series, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 3)

	// The slot frees up after completion.
	_, err = svc.Start(context.Background())
	assert.NoError(t, err)
	svc.Stop()
}

func TestFetchService_Start_ErrorIsTerminal(t *testing.T) {
	source := &fakeSource{
		historical: func(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
			return nil, facades.ErrInvalidAPIKey
		},
	}
	svc := NewFetchService(source, &memStore{}, "USD", testDay(t, "2025-01-01"), 0)
	svc.now = func() time.Time { return testDay(t, "2025-01-03") }

	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return svc.Progress().Status == models.FetchStatusError
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, svc.Progress().Message, "Error:")
}
