package security

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
)

// countingRunner counts sweeps without mock bookkeeping overhead.
type countingRunner struct {
	count atomic.Int32
	err   error
}

func (c *countingRunner) RunSweep(ctx context.Context) error {
	c.count.Add(1)
	return c.err
}

func TestScheduler_RunsAfterGraceThenOnInterval(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 20*time.Millisecond, 30*time.Millisecond, testLogger())

	s.Start(context.Background())
	defer s.Stop()

	// nothing during the grace period
	time.Sleep(10 * time.Millisecond)
	assert.EqualValues(t, 0, runner.count.Load())

	// first sweep after grace, then interval ticks
	require.Eventually(t, func() bool {
		return runner.count.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return runner.count.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_TriggerSharesTheSweepPath(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, time.Hour, testLogger())

	// manual trigger works even while the timer is still in grace
	require.NoError(t, s.Trigger(context.Background()))
	assert.EqualValues(t, 1, runner.count.Load())
}

func TestScheduler_TriggerSurfacesSweepError(t *testing.T) {
	runner := &countingRunner{err: errors.NewStorageError("aggregate activity by actor", context.DeadlineExceeded)}
	s := NewScheduler(runner, time.Hour, time.Hour, testLogger())

	err := s.Trigger(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestScheduler_StopHaltsTheLoop(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Millisecond, 10*time.Millisecond, testLogger())

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return runner.count.Load() >= 1
	}, time.Second, time.Millisecond)

	s.Stop()
	after := runner.count.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runner.count.Load())

	// Stop is idempotent
	s.Stop()
}

func TestScheduler_ContextCancelHaltsTheLoop(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Millisecond, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runner.count.Load() >= 1
	}, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	after := runner.count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runner.count.Load())
}
