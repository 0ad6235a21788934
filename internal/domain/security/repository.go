package security

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogRepository is the persistence contract for the append-only activity log.
type LogRepository interface {
	// Append stores one immutable entry.
	Append(ctx context.Context, entry *LogEntry) error

	// AppendBatch stores several entries in one round trip. Used by the
	// attack simulation endpoint.
	AppendBatch(ctx context.Context, entries []*LogEntry) error

	// AggregateByActor groups entries of one action kind with
	// occurred_at >= since, yielding per-actor count and min/max timestamps.
	AggregateByActor(ctx context.Context, action Action, since time.Time) ([]ActorActivity, error)

	// ListRecent returns entries newest first, joined with the actor's email.
	ListRecent(ctx context.Context, limit, offset int) ([]*LogEntryView, error)

	// DeleteAll purges the log. Administrative reset only.
	DeleteAll(ctx context.Context) error
}

// IncidentRepository is the persistence contract for monitored-user incidents.
type IncidentRepository interface {
	// Create inserts a new incident. Implementations must report a conflict
	// (errors.ErrorTypeConflict) when an active incident for the same
	// (actor, reason) already exists.
	Create(ctx context.Context, incident *Incident) error

	// FindActive returns the active incident for (actor, reason), or
	// a not-found error when none exists.
	FindActive(ctx context.Context, actorID uuid.UUID, reason string) (*Incident, error)

	// GetByID returns one incident.
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)

	// List returns all incidents newest-detection first, joined with actor
	// and reviewer display identities.
	List(ctx context.Context) ([]*IncidentView, error)

	// UpdateReview persists status, reviewer, reviewed_at and notes. Returns
	// a not-found error when the id does not exist (zero rows affected).
	UpdateReview(ctx context.Context, incident *Incident) error

	// DeleteAll removes all incidents. Administrative reset only.
	DeleteAll(ctx context.Context) error
}

// LogEntryView is a log entry joined with the actor's display identity.
type LogEntryView struct {
	LogEntry
	ActorEmail string `json:"actor_email"`
}
