package security

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// reviewService implements ReviewService over the incident and log stores.
type reviewService struct {
	incidents security.IncidentRepository
	logs      security.LogRepository
	clock     security.Clock
	logger    *slog.Logger
}

// NewReviewService creates the incident review workflow
func NewReviewService(
	incidents security.IncidentRepository,
	logs security.LogRepository,
	clock security.Clock,
	logger *slog.Logger,
) ReviewService {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &reviewService{
		incidents: incidents,
		logs:      logs,
		clock:     clock,
		logger:    logger,
	}
}

func (s *reviewService) ListIncidents(ctx context.Context) ([]*security.IncidentView, error) {
	return s.incidents.List(ctx)
}

// SetStatus applies a triage decision to one incident. The domain state
// machine rejects invalid transitions; a missing incident surfaces not-found.
func (s *reviewService) SetStatus(ctx context.Context, id uuid.UUID, status security.IncidentStatus, reviewerID uuid.UUID, notes string) (*security.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := incident.Review(status, reviewerID, notes, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.incidents.UpdateReview(ctx, incident); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "incident reviewed",
		"incident_id", incident.ID,
		"status", incident.Status,
		"reviewer_id", reviewerID,
	)
	return incident, nil
}

func (s *reviewService) ListActivityLogs(ctx context.Context, limit, offset int) ([]*security.LogEntryView, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.logs.ListRecent(ctx, limit, offset)
}

// ResetAll removes all incidents and, when clearLogs is set, the activity
// log itself.
func (s *reviewService) ResetAll(ctx context.Context, clearLogs bool) error {
	if err := s.incidents.DeleteAll(ctx); err != nil {
		return err
	}

	if clearLogs {
		if err := s.logs.DeleteAll(ctx); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "monitoring state reset", "cleared_logs", clearLogs)
	return nil
}
