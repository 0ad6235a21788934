package security

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler owns the recurring detection sweep. A grace period lets the
// process finish wiring before the first pass; afterwards sweeps run at a
// fixed interval. Timer ticks and manual triggers share the same entry point.
type Scheduler struct {
	runner      SweepRunner
	gracePeriod time.Duration
	interval    time.Duration
	logger      *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

// NewScheduler creates a monitoring scheduler
func NewScheduler(runner SweepRunner, gracePeriod, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:      runner,
		gracePeriod: gracePeriod,
		interval:    interval,
		logger:      logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs until
// Stop is called or ctx is cancelled. An in-flight sweep runs to completion.
func (s *Scheduler) Start(ctx context.Context) {
	s.started = true
	go func() {
		defer close(s.done)

		select {
		case <-time.After(s.gracePeriod):
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}

		s.logger.InfoContext(ctx, "security monitoring started",
			"interval", s.interval.String(),
		)

		if err := s.Trigger(ctx); err != nil {
			s.logger.WarnContext(ctx, "scheduled sweep failed", "error", err)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Trigger(ctx); err != nil {
					s.logger.WarnContext(ctx, "scheduled sweep failed", "error", err)
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Trigger runs one sweep immediately. Safe to call concurrently with the
// timer loop; the detector serializes overlapping sweeps.
func (s *Scheduler) Trigger(ctx context.Context) error {
	return s.runner.RunSweep(ctx)
}

// Stop halts the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started {
		<-s.done
	}
}
