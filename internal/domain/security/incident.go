package security

import (
	"fmt"
	"time"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/google/uuid"
)

// IncidentStatus is the review lifecycle state of a flagged actor.
type IncidentStatus string

const (
	StatusActive        IncidentStatus = "active"
	StatusInvestigating IncidentStatus = "investigating"
	StatusResolved      IncidentStatus = "resolved"
)

// ParseIncidentStatus validates a raw status string.
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	switch IncidentStatus(s) {
	case StatusActive, StatusInvestigating, StatusResolved:
		return IncidentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown incident status: %q", s)
	}
}

// CanTransitionTo reports whether the review workflow may move an incident
// from the current status to the target. Incidents are created active;
// resolved is terminal short of a bulk reset.
func (s IncidentStatus) CanTransitionTo(target IncidentStatus) bool {
	switch s {
	case StatusActive:
		return target == StatusInvestigating || target == StatusResolved
	case StatusInvestigating:
		return target == StatusResolved
	default:
		return false
	}
}

// Incident is a persisted record of a detected burst pending or past review.
// At most one incident per (actor, reason) may be active at a time.
type Incident struct {
	ID             uuid.UUID      `json:"id"`
	ActorID        uuid.UUID      `json:"actor_id"`
	Reason         string         `json:"reason"`
	DetectedAt     time.Time      `json:"detected_at"`
	ActivityCount  int            `json:"activity_count"`
	ObservedWindow time.Duration  `json:"observed_window"`
	Status         IncidentStatus `json:"status"`
	ReviewedBy     *uuid.UUID     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// NewIncident materializes an active incident for a burst that crossed its
// threshold. ActivityCount is the observed count, which may exceed the
// configured threshold.
func NewIncident(activity ActorActivity, rule ThresholdRule, detectedAt time.Time) (*Incident, error) {
	if activity.ActorID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_ACTOR", "actor ID is required")
	}
	if activity.Count < rule.Count {
		return nil, errors.NewValidationError("BELOW_THRESHOLD",
			fmt.Sprintf("count %d is below threshold %d", activity.Count, rule.Count))
	}

	return &Incident{
		ID:             uuid.New(),
		ActorID:        activity.ActorID,
		Reason:         rule.Reason,
		DetectedAt:     detectedAt.UTC(),
		ActivityCount:  activity.Count,
		ObservedWindow: activity.ObservedWindow(),
		Status:         StatusActive,
	}, nil
}

// Review applies a triage decision. Only investigating and resolved are valid
// targets, and the transition must be permitted by the state machine.
func (i *Incident) Review(status IncidentStatus, reviewerID uuid.UUID, notes string, reviewedAt time.Time) error {
	if status != StatusInvestigating && status != StatusResolved {
		return errors.ErrInvalidTransition
	}
	if !i.Status.CanTransitionTo(status) {
		return errors.NewValidationError("INVALID_STATUS",
			fmt.Sprintf("cannot transition incident from %s to %s", i.Status, status))
	}

	i.Status = status
	i.ReviewedBy = &reviewerID
	t := reviewedAt.UTC()
	i.ReviewedAt = &t
	i.Notes = notes
	return nil
}

// IncidentView is an incident joined with display identities for the admin
// review listing.
type IncidentView struct {
	Incident
	ActorEmail     string `json:"actor_email"`
	ActorFirstName string `json:"actor_first_name,omitempty"`
	ActorLastName  string `json:"actor_last_name,omitempty"`
	ReviewerEmail  string `json:"reviewer_email,omitempty"`
}
