package security

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/google/uuid"
)

// Action classifies a mutating operation for audit and threshold purposes.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionOther  Action = "other"
)

// ParseAction validates a raw action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionOther:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action: %q", s)
	}
}

// ActionFromMethod derives the audit action from an HTTP verb.
// Read-only verbs map to ActionOther and are never recorded.
func ActionFromMethod(method string) Action {
	switch method {
	case "POST":
		return ActionCreate
	case "PUT", "PATCH":
		return ActionUpdate
	case "DELETE":
		return ActionDelete
	default:
		return ActionOther
	}
}

// IsMutating reports whether entries of this action are appended to the log.
func (a Action) IsMutating() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin:
		return true
	}
	return false
}

func (a Action) String() string { return string(a) }

// LogEntry is an immutable activity log record. Entries are appended once per
// qualifying mutating operation and never updated; deletion happens only via
// the administrative reset.
type LogEntry struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    uuid.UUID       `json:"actor_id"`
	Action     Action          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EntryDetails is the structured request context captured with an entry.
// It is stored as an opaque JSON blob; nothing in the detection path reads it.
type EntryDetails struct {
	Method string            `json:"method,omitempty"`
	Path   string            `json:"path,omitempty"`
	Query  string            `json:"query,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
	Extra  map[string]any    `json:"extra,omitempty"`
}

// NewLogEntry creates a validated activity log entry.
func NewLogEntry(actorID uuid.UUID, action Action, entityType, entityID string, details *EntryDetails, occurredAt time.Time) (*LogEntry, error) {
	if actorID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_ACTOR", "actor ID is required")
	}
	if !action.IsMutating() {
		return nil, errors.NewValidationError("NOT_MUTATING",
			fmt.Sprintf("action %q is not logged", action))
	}
	if entityType == "" {
		return nil, errors.NewValidationError("MISSING_ENTITY_TYPE", "entity type is required")
	}

	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return nil, errors.NewInternalError("failed to marshal entry details").WithCause(err)
		}
		raw = b
	}

	return &LogEntry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// ActorActivity is a per-actor aggregate of log entries for one action kind
// within a detection window: the count plus the first and last timestamps.
type ActorActivity struct {
	ActorID uuid.UUID
	Count   int
	First   time.Time
	Last    time.Time
}

// ObservedWindow returns the span between the first and last entry, floored
// to one second so a burst landing on a single timestamp never reports zero.
func (a ActorActivity) ObservedWindow() time.Duration {
	w := a.Last.Sub(a.First)
	if w < time.Second {
		return time.Second
	}
	return w.Round(time.Second)
}
