package security

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// MockLogRepository mocks security.LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Append(ctx context.Context, entry *security.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepository) AppendBatch(ctx context.Context, entries []*security.LogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLogRepository) AggregateByActor(ctx context.Context, action security.Action, since time.Time) ([]security.ActorActivity, error) {
	args := m.Called(ctx, action, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]security.ActorActivity), args.Error(1)
}

func (m *MockLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*security.LogEntryView, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*security.LogEntryView), args.Error(1)
}

func (m *MockLogRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIncidentRepository mocks security.IncidentRepository
type MockIncidentRepository struct {
	mock.Mock
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *security.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) FindActive(ctx context.Context, actorID uuid.UUID, reason string) (*security.Incident, error) {
	args := m.Called(ctx, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Incident), args.Error(1)
}

func (m *MockIncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*security.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Incident), args.Error(1)
}

func (m *MockIncidentRepository) List(ctx context.Context) ([]*security.IncidentView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*security.IncidentView), args.Error(1)
}

func (m *MockIncidentRepository) UpdateReview(ctx context.Context, incident *security.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSweepRunner mocks SweepRunner
type MockSweepRunner struct {
	mock.Mock
}

func (m *MockSweepRunner) RunSweep(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
