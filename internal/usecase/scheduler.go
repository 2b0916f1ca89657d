package usecase

import (
	"context"
	"time"

	"EssayRC/internal/ports"
)

// Scheduler wires the interval driver with recurring batch generation.
type Scheduler struct {
	driver    ports.Scheduler
	batch     *BatchRunner
	batchSize int
}

// NewScheduler returns a helper to start/stop recurring batch runs.
func NewScheduler(driver ports.Scheduler, batch *BatchRunner, batchSize int) *Scheduler {
	return &Scheduler{driver: driver, batch: batch, batchSize: batchSize}
}

// Start registers the batch run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.batch == nil {
		return nil
	}

	job := func(time.Time) {
		_, _ = s.batch.Run(ctx, s.batchSize)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
