package security

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

const maxSimulatedEntries = 1000

// attackSimulator floods the activity log on behalf of the calling user and
// immediately triggers a sweep, so a demo can watch itself get flagged.
type attackSimulator struct {
	logs   security.LogRepository
	runner SweepRunner
	clock  security.Clock
	logger *slog.Logger
}

// NewAttackSimulator creates the attack simulation service
func NewAttackSimulator(logs security.LogRepository, runner SweepRunner, clock security.Clock, logger *slog.Logger) Simulator {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &attackSimulator{logs: logs, runner: runner, clock: clock, logger: logger}
}

func (s *attackSimulator) Simulate(ctx context.Context, actorID uuid.UUID, action security.Action, count int) error {
	if count <= 0 {
		return errors.NewValidationError("INVALID_COUNT", "count must be positive")
	}
	if count > maxSimulatedEntries {
		return errors.NewValidationError("INVALID_COUNT",
			fmt.Sprintf("count must not exceed %d", maxSimulatedEntries))
	}

	now := s.clock.Now()
	entries := make([]*security.LogEntry, 0, count)
	for i := 0; i < count; i++ {
		details := &security.EntryDetails{
			Extra: map[string]any{"simulation": true, "attempt": i},
		}
		entry, err := security.NewLogEntry(actorID, action, "driver",
			fmt.Sprintf("sim-%d", i), details, now)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if err := s.logs.AppendBatch(ctx, entries); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "attack simulated",
		"actor_id", actorID,
		"action", action.String(),
		"count", count,
	)

	return s.runner.RunSweep(ctx)
}
