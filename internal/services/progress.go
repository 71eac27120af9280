package services

import (
	"sync"

	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// ProgressTracker is the shared progress record of the background fetch:
// a single writer (the active fetch task) and any number of polling readers.
// Reset at the start of a fetch, mutated throughout, left at its terminal
// status until the next fetch begins.
type ProgressTracker struct {
	mu  sync.RWMutex
	cur models.FetchProgress
}

// NewProgressTracker starts in the idle state.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		cur: models.FetchProgress{Status: models.FetchStatusIdle},
	}
}

// Reset moves to the fetching state at zero percent.
func (t *ProgressTracker) Reset(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur = models.FetchProgress{
		Percent: 0,
		Status:  models.FetchStatusFetching,
		Message: message,
	}
}

// Update records progress. Percent is clamped so readers always observe a
// non-decreasing value within one fetch.
func (t *ProgressTracker) Update(percent float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent > t.cur.Percent {
		t.cur.Percent = percent
	}
	t.cur.Message = message
}

// Finish records a terminal status. A completed fetch always reads 100%.
func (t *ProgressTracker) Finish(status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur.Status = status
	t.cur.Message = message
	if status == models.FetchStatusCompleted {
		t.cur.Percent = 100
	}
}

// Snapshot returns a copy of the current progress.
func (t *ProgressTracker) Snapshot() models.FetchProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cur
}
