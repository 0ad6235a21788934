package database

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// IncidentRepository implements security.IncidentRepository over PostgreSQL.
// A partial unique index on (actor_id, reason) WHERE status = 'active' backs
// incident dedup; a 23505 on insert means the actor is already covered.
type IncidentRepository struct {
	db *pgxpool.Pool
}

// NewIncidentRepository creates a new PostgreSQL incident repository
func NewIncidentRepository(db *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *security.Incident) error {
	query := `
		INSERT INTO monitored_user_incidents (
			id, actor_id, reason, detected_at, activity_count,
			observed_window_seconds, status, reviewed_by, reviewed_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.ActorID,
		incident.Reason,
		incident.DetectedAt,
		incident.ActivityCount,
		int64(incident.ObservedWindow/time.Second),
		string(incident.Status),
		incident.ReviewedBy,
		incident.ReviewedAt,
		nullString(incident.Notes),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errors.NewConflictError("active incident already exists for actor and reason").WithCause(err)
		}
		return errors.NewStorageError("create incident", err)
	}

	return nil
}

func (r *IncidentRepository) FindActive(ctx context.Context, actorID uuid.UUID, reason string) (*security.Incident, error) {
	query := incidentSelect + `
		WHERE actor_id = $1 AND reason = $2 AND status = 'active'`

	incident, err := r.scanIncident(r.db.QueryRow(ctx, query, actorID, reason))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrIncidentNotFound
		}
		return nil, errors.NewStorageError("find active incident", err)
	}

	return incident, nil
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*security.Incident, error) {
	query := incidentSelect + `
		WHERE id = $1`

	incident, err := r.scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrIncidentNotFound
		}
		return nil, errors.NewStorageError("get incident", err)
	}

	return incident, nil
}

func (r *IncidentRepository) List(ctx context.Context) ([]*security.IncidentView, error) {
	query := `
		SELECT i.id, i.actor_id, i.reason, i.detected_at, i.activity_count,
		       i.observed_window_seconds, i.status, i.reviewed_by, i.reviewed_at,
		       COALESCE(i.notes, ''),
		       u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       COALESCE(rev.email, '')
		FROM monitored_user_incidents i
		JOIN users u ON u.id = i.actor_id
		LEFT JOIN users rev ON rev.id = i.reviewed_by
		ORDER BY i.detected_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.NewStorageError("list incidents", err)
	}
	defer rows.Close()

	var views []*security.IncidentView
	for rows.Next() {
		var v security.IncidentView
		var status string
		var windowSeconds int64
		if err := rows.Scan(&v.ID, &v.ActorID, &v.Reason, &v.DetectedAt, &v.ActivityCount,
			&windowSeconds, &status, &v.ReviewedBy, &v.ReviewedAt, &v.Notes,
			&v.ActorEmail, &v.ActorFirstName, &v.ActorLastName, &v.ReviewerEmail); err != nil {
			return nil, errors.NewStorageError("scan incident", err)
		}
		v.Status = security.IncidentStatus(status)
		v.ObservedWindow = time.Duration(windowSeconds) * time.Second
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate incidents", err)
	}

	return views, nil
}

func (r *IncidentRepository) UpdateReview(ctx context.Context, incident *security.Incident) error {
	query := `
		UPDATE monitored_user_incidents
		SET status = $2, reviewed_by = $3, reviewed_at = $4, notes = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		incident.ID,
		string(incident.Status),
		incident.ReviewedBy,
		incident.ReviewedAt,
		nullString(incident.Notes),
	)
	if err != nil {
		return errors.NewStorageError("update incident review", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrIncidentNotFound
	}

	return nil
}

func (r *IncidentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM monitored_user_incidents`); err != nil {
		return errors.NewStorageError("delete incidents", err)
	}
	return nil
}

const incidentSelect = `
		SELECT id, actor_id, reason, detected_at, activity_count,
		       observed_window_seconds, status, reviewed_by, reviewed_at,
		       COALESCE(notes, '')
		FROM monitored_user_incidents`

func (r *IncidentRepository) scanIncident(row pgx.Row) (*security.Incident, error) {
	var incident security.Incident
	var status string
	var windowSeconds int64
	if err := row.Scan(&incident.ID, &incident.ActorID, &incident.Reason, &incident.DetectedAt,
		&incident.ActivityCount, &windowSeconds, &status,
		&incident.ReviewedBy, &incident.ReviewedAt, &incident.Notes); err != nil {
		return nil, err
	}
	incident.Status = security.IncidentStatus(status)
	incident.ObservedWindow = time.Duration(windowSeconds) * time.Second
	return &incident, nil
}
