package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-rate-predictor/internal/facades"
	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// RateSource is the uniform external rate provider interface. Sources must
// return facades.ErrNotAvailable for a date with no data (skippable) and
// facades.ErrInvalidAPIKey for credential failures (fatal).
type RateSource interface {
	LatestRates(ctx context.Context, base string) (map[string]float64, error)
	HistoricalRates(ctx context.Context, base string, date time.Time) (map[string]float64, error)
	Name() string
}

// SeriesMerger is the slice of the rates store the fetcher writes through.
type SeriesMerger interface {
	Load(ctx context.Context) (models.RateSeries, error)
	Merge(ctx context.Context, newRows []models.RateRow) (models.RateSeries, error)
}

// ProgressFunc receives percent complete (0-100) and a status message after
// every unit of fetch work.
type ProgressFunc func(percent float64, message string)

// FetchService drives day-by-day acquisition of historical rates from a
// RateSource into the store. One background fetch runs at a time; a second
// start is rejected while the first is in flight.
type FetchService struct {
	source   RateSource
	store    SeriesMerger
	progress *ProgressTracker

	base     string
	earliest time.Time
	delay    time.Duration

	now func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFetchService creates a fetch service. earliest is the bootstrap start
// date used when the store is empty; delay throttles consecutive source
// requests.
func NewFetchService(source RateSource, store SeriesMerger, base string, earliest time.Time, delay time.Duration) *FetchService {
	return &FetchService{
		source:   source,
		store:    store,
		progress: NewProgressTracker(),
		base:     base,
		earliest: models.Day(earliest),
		delay:    delay,
		now:      time.Now,
	}
}

// FetchRange fetches the inclusive date range day by day and returns the
// rows that could be built. Per-date failures are logged and skipped; only
// credential failures or context cancellation halt the loop early, and both
// return the rows fetched so far alongside the error.
func (s *FetchService) FetchRange(ctx context.Context, start, end time.Time, onProgress ProgressFunc) ([]models.RateRow, error) {
	start, end = models.Day(start), models.Day(end)
	if start.After(end) {
		return nil, nil
	}

	total := int(end.Sub(start).Hours()/24) + 1
	rows := make([]models.RateRow, 0, total)

	logger.Log.Infow("fetching rate history",
		"source", s.source.Name(),
		"base", s.base,
		"start", start.Format(models.DateLayout),
		"end", end.Format(models.DateLayout),
		"days", total,
	)

	done := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		rates, err := s.source.HistoricalRates(ctx, s.base, d)
		switch {
		case errors.Is(err, facades.ErrInvalidAPIKey):
			logger.Log.Errorw("fetch halted: credentials rejected", "date", d.Format(models.DateLayout))
			return rows, err
		case err != nil:
			// A single bad date must not abort the whole range.
			logger.Log.Warnw("skipping date",
				"date", d.Format(models.DateLayout),
				"error", err,
			)
		default:
			rows = append(rows, buildRow(s.base, d, rates))
		}

		done++
		if onProgress != nil {
			onProgress(float64(done)/float64(total)*100, fmt.Sprintf("Fetched %s", d.Format(models.DateLayout)))
		}

		if s.delay > 0 && done < total {
			select {
			case <-ctx.Done():
				return rows, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return rows, nil
}

// UpdateToLatest brings the store up to today. An empty store bootstraps
// from the configured earliest date; otherwise only the gap after the last
// stored date is fetched and merged. A non-positive gap returns the stored
// series unchanged.
func (s *FetchService) UpdateToLatest(ctx context.Context, onProgress ProgressFunc) (models.RateSeries, error) {
	series, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	today := models.Day(s.now())
	start := s.earliest
	if _, max, ok := series.DateRange(); ok {
		start = max.AddDate(0, 0, 1)
		if start.After(today) {
			logger.Log.Infow("rate series already up to date",
				"last_date", max.Format(models.DateLayout),
			)
			return series, nil
		}
	}

	rows, fetchErr := s.FetchRange(ctx, start, today, onProgress)
	if len(rows) > 0 {
		merged, err := s.store.Merge(ctx, rows)
		if err != nil {
			return nil, err
		}
		series = merged
	}
	if fetchErr != nil {
		return series, fetchErr
	}
	return series, nil
}

// Start launches UpdateToLatest as a background task and returns its id.
// The task detaches from the caller's cancellation but keeps its values;
// Stop or process shutdown cancels it between per-date units. A second
// Start while one task runs returns ErrFetchInProgress.
func (s *FetchService) Start(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return uuid.Nil, ErrFetchInProgress
	}

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	taskID := uuid.New()
	s.progress.Reset("Fetching exchange rate data...")

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			s.running = false
			s.cancel = nil
			close(s.done)
			s.mu.Unlock()
		}()

		_, err := s.UpdateToLatest(taskCtx, s.progress.Update)
		if err != nil {
			logger.Log.Errorw("background fetch failed", "task_id", taskID, "error", err)
			s.progress.Finish(models.FetchStatusError, "Error: "+err.Error())
			return
		}
		logger.Log.Infow("background fetch completed", "task_id", taskID)
		s.progress.Finish(models.FetchStatusCompleted, "Data fetching completed")
	}()

	logger.Log.Infow("background fetch started", "task_id", taskID, "source", s.source.Name())
	return taskID, nil
}

// Progress returns a snapshot of the background fetch state.
func (s *FetchService) Progress() models.FetchProgress {
	return s.progress.Snapshot()
}

// Stop cancels an in-flight background fetch, if any, and waits for it to
// finish. Used at shutdown.
func (s *FetchService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// buildRow assembles a RateRow with forward base_to_X columns and, where the
// rate is non-zero, the derived inverse X_to_base columns.
func buildRow(base string, date time.Time, rates map[string]float64) models.RateRow {
	row := models.RateRow{
		Date:         date,
		BaseCurrency: base,
		Rates:        make(map[string]float64, 2*len(rates)),
	}
	for currency, rate := range rates {
		if currency == base {
			continue
		}
		row.Rates[models.PairName(base, currency)] = rate
		if rate != 0 {
			row.Rates[models.PairName(currency, base)] = 1 / rate
		}
	}
	return row
}
