package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateUser inserts a user row directly and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, email, role string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, 'x', 'Test', 'User', $3)`,
		id, email, role)
	require.NoError(t, err)
	return id
}

// CreateLogEntries inserts count entries of one action for an actor, spaced a
// second apart ending at last.
func CreateLogEntries(t *testing.T, pool *pgxpool.Pool, actorID uuid.UUID, action string, count int, last time.Time) {
	t.Helper()

	for i := 0; i < count; i++ {
		occurredAt := last.Add(-time.Duration(count-1-i) * time.Second)
		_, err := pool.Exec(context.Background(), `
			INSERT INTO activity_logs (id, actor_id, action, entity_type, entity_id, occurred_at)
			VALUES ($1, $2, $3, 'driver', $4, $5)`,
			uuid.New(), actorID, action, fmt.Sprintf("fixture-%d", i), occurredAt)
		require.NoError(t, err)
	}
}
