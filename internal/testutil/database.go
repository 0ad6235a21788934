package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/testutil/containers"
)

// schema mirrors migrations/*.sql so integration tests run against the same
// shape the migrator produces.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    first_name VARCHAR(100),
    last_name VARCHAR(100),
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMP WITH TIME ZONE
);

CREATE TABLE IF NOT EXISTS drivers (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    phone VARCHAR(50),
    date_of_birth DATE,
    date_of_hiring DATE,
    assigned_status VARCHAR(20) NOT NULL DEFAULT 'unassigned',
    address TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vehicles (
    id UUID PRIMARY KEY,
    plate VARCHAR(20) UNIQUE NOT NULL,
    brand VARCHAR(100) NOT NULL,
    model VARCHAR(100) NOT NULL,
    year INTEGER,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    location VARCHAR(100),
    mileage INTEGER,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id UUID PRIMARY KEY,
    actor_id UUID NOT NULL REFERENCES users(id),
    action VARCHAR(50) NOT NULL,
    entity_type VARCHAR(50) NOT NULL,
    entity_id VARCHAR(100),
    details JSONB,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS monitored_user_incidents (
    id UUID PRIMARY KEY,
    actor_id UUID NOT NULL REFERENCES users(id),
    reason VARCHAR(100) NOT NULL,
    detected_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    activity_count INTEGER NOT NULL,
    observed_window_seconds BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    reviewed_by UUID REFERENCES users(id),
    reviewed_at TIMESTAMP WITH TIME ZONE,
    notes TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_incident_active_actor_reason
    ON monitored_user_incidents(actor_id, reason)
    WHERE status = 'active';
`

// TestDB provides a pgx pool against a disposable PostgreSQL container with
// the full schema applied. Callers should skip with testing.Short().
type TestDB struct {
	t    *testing.T
	pool *pgxpool.Pool
}

// NewTestDB starts a PostgreSQL container, applies the schema and returns a
// connected pool. Cleanup is registered on the test.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := containers.NewPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	pool, err := pgxpool.New(ctx, container.ConnectionString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	return &TestDB{t: t, pool: pool}
}

// Pool returns the underlying connection pool
func (tdb *TestDB) Pool() *pgxpool.Pool {
	return tdb.pool
}

// TruncateAll clears all tables between test cases
func (tdb *TestDB) TruncateAll(ctx context.Context) {
	tdb.t.Helper()
	_, err := tdb.pool.Exec(ctx, `
		TRUNCATE monitored_user_incidents, activity_logs, vehicles, drivers, users CASCADE`)
	require.NoError(tdb.t, err)
}

// TruncateLogs clears the monitoring tables but keeps user fixtures
func (tdb *TestDB) TruncateLogs(ctx context.Context) {
	tdb.t.Helper()
	_, err := tdb.pool.Exec(ctx, `TRUNCATE monitored_user_incidents, activity_logs`)
	require.NoError(tdb.t, err)
}
