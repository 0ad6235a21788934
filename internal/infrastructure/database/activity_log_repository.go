package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// ActivityLogRepository implements security.LogRepository over PostgreSQL.
// The activity_logs table is append-only; rows are only ever removed by the
// administrative reset.
type ActivityLogRepository struct {
	db *pgxpool.Pool
}

// NewActivityLogRepository creates a new PostgreSQL activity log repository
func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry *security.LogEntry) error {
	query := `
		INSERT INTO activity_logs (id, actor_id, action, entity_type, entity_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		string(entry.Action),
		entry.EntityType,
		nullString(entry.EntityID),
		entry.Details,
		entry.OccurredAt,
	)
	if err != nil {
		return errors.NewStorageError("append activity log entry", err)
	}

	return nil
}

func (r *ActivityLogRepository) AppendBatch(ctx context.Context, entries []*security.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO activity_logs (id, actor_id, action, entity_type, entity_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, entry := range entries {
		batch.Queue(query,
			entry.ID,
			entry.ActorID,
			string(entry.Action),
			entry.EntityType,
			nullString(entry.EntityID),
			entry.Details,
			entry.OccurredAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return errors.NewStorageError("append activity log batch", err)
		}
	}

	return nil
}

func (r *ActivityLogRepository) AggregateByActor(ctx context.Context, action security.Action, since time.Time) ([]security.ActorActivity, error) {
	query := `
		SELECT actor_id, COUNT(*), MIN(occurred_at), MAX(occurred_at)
		FROM activity_logs
		WHERE action = $1 AND occurred_at >= $2
		GROUP BY actor_id`

	rows, err := r.db.Query(ctx, query, string(action), since)
	if err != nil {
		return nil, errors.NewStorageError("aggregate activity by actor", err)
	}
	defer rows.Close()

	var activities []security.ActorActivity
	for rows.Next() {
		var a security.ActorActivity
		if err := rows.Scan(&a.ActorID, &a.Count, &a.First, &a.Last); err != nil {
			return nil, errors.NewStorageError("scan actor activity", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate actor activity", err)
	}

	return activities, nil
}

func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*security.LogEntryView, error) {
	query := `
		SELECT l.id, l.actor_id, l.action, l.entity_type, COALESCE(l.entity_id, ''),
		       l.details, l.occurred_at, u.email
		FROM activity_logs l
		JOIN users u ON u.id = l.actor_id
		ORDER BY l.occurred_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.NewStorageError("list activity log entries", err)
	}
	defer rows.Close()

	var views []*security.LogEntryView
	for rows.Next() {
		var v security.LogEntryView
		var action string
		if err := rows.Scan(&v.ID, &v.ActorID, &action, &v.EntityType, &v.EntityID,
			&v.Details, &v.OccurredAt, &v.ActorEmail); err != nil {
			return nil, errors.NewStorageError("scan activity log entry", err)
		}
		v.Action = security.Action(action)
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate activity log entries", err)
	}

	return views, nil
}

func (r *ActivityLogRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM activity_logs`); err != nil {
		return errors.NewStorageError("delete activity log entries", err)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
