package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(20 * time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
	}))
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond, "immediate run plus at least two ticks")
}

func TestIntervalSchedulerStop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(10 * time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
	}))
	require.NoError(t, s.Stop(context.Background()))

	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), settled+1, "no further runs after stop")

	// stopping again is a no-op, and the scheduler can be restarted
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
	}))
	restarted := runs.Load()
	assert.Eventually(t, func() bool {
		return runs.Load() > restarted
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestIntervalSchedulerDisabled(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(0)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
	}))
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load(), "zero interval means the scheduler is off")
	require.NoError(t, s.Stop(context.Background()))
}
