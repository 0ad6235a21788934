package security

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// SweepRunner runs one detection pass over the activity log.
type SweepRunner interface {
	RunSweep(ctx context.Context) error
}

// Recorder appends activity entries without blocking the caller's response.
type Recorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action security.Action, entityType, entityID string, details *security.EntryDetails)
}

// ReviewService drives the admin incident workflow.
type ReviewService interface {
	ListIncidents(ctx context.Context) ([]*security.IncidentView, error)
	SetStatus(ctx context.Context, id uuid.UUID, status security.IncidentStatus, reviewerID uuid.UUID, notes string) (*security.Incident, error)
	ListActivityLogs(ctx context.Context, limit, offset int) ([]*security.LogEntryView, error)
	ResetAll(ctx context.Context, clearLogs bool) error
}

// Simulator floods the log on behalf of an actor and triggers a sweep.
type Simulator interface {
	Simulate(ctx context.Context, actorID uuid.UUID, action security.Action, count int) error
}
