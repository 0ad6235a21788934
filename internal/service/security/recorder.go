package security

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

const appendTimeout = 5 * time.Second

// ActivityRecorder appends audit entries fire-and-forget: the caller's
// response never waits on the write, and a failed write is logged as a
// warning and swallowed.
type ActivityRecorder struct {
	logs   security.LogRepository
	clock  security.Clock
	logger *slog.Logger
}

// NewActivityRecorder creates an activity recorder
func NewActivityRecorder(logs security.LogRepository, clock security.Clock, logger *slog.Logger) *ActivityRecorder {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &ActivityRecorder{logs: logs, clock: clock, logger: logger}
}

// Record validates and appends an entry in the background. The write gets a
// detached context so it may outlive the HTTP response that produced it.
func (r *ActivityRecorder) Record(ctx context.Context, actorID uuid.UUID, action security.Action, entityType, entityID string, details *security.EntryDetails) {
	entry, err := security.NewLogEntry(actorID, action, entityType, entityID, details, r.clock.Now())
	if err != nil {
		r.logger.WarnContext(ctx, "failed to build activity log entry",
			"actor_id", actorID,
			"action", action.String(),
			"error", err,
		)
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		writeCtx, cancel := context.WithTimeout(bgCtx, appendTimeout)
		defer cancel()

		if err := r.logs.Append(writeCtx, entry); err != nil {
			r.logger.WarnContext(writeCtx, "failed to append activity log entry",
				"actor_id", entry.ActorID,
				"action", entry.Action.String(),
				"entity_type", entry.EntityType,
				"error", err,
			)
		}
	}()
}
