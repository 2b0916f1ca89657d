package scheduler

import (
	"context"
	"time"

	"EssayRC/internal/ports"
)

// IntervalScheduler re-runs a job on a fixed ticker. It exists so failed
// and newly ingested essays get picked up without a human re-invoking
// generation.
type IntervalScheduler struct {
	every time.Duration
	stop  chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler firing every interval.
func NewIntervalScheduler(every time.Duration) *IntervalScheduler {
	return &IntervalScheduler{every: every}
}

// Start runs the job once immediately and then on every tick.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.every <= 0 {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	// the goroutine holds its own reference so Stop clearing the field
	// cannot race the select
	stop := make(chan struct{})
	s.stop = stop
	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
