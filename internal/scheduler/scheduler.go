package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/services"
)

// FetchStarter starts a background rate fetch.
type FetchStarter interface {
	Start(ctx context.Context) (uuid.UUID, error)
}

// Scheduler triggers periodic rate updates on a cron spec.
type Scheduler struct {
	cron    *cron.Cron
	fetcher FetchStarter
	ctx     context.Context
}

// New creates a scheduler bound to ctx; jobs started later inherit it.
func New(ctx context.Context, fetcher FetchStarter) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		fetcher: fetcher,
		ctx:     ctx,
	}
}

// Register adds the periodic update job under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.updateTask); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Infow("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Infow("scheduler stopped")
}

func (s *Scheduler) updateTask() {
	taskID, err := s.fetcher.Start(s.ctx)
	if err != nil {
		if errors.Is(err, services.ErrFetchInProgress) {
			logger.Log.Infow("scheduled update skipped, fetch already running")
			return
		}
		logger.Log.Errorw("scheduled update failed to start", "error", err)
		return
	}
	logger.Log.Infow("scheduled update started", "task_id", taskID)
}
