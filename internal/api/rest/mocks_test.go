package rest

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListIncidents(ctx context.Context) ([]*security.IncidentView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*security.IncidentView), args.Error(1)
}

func (m *MockReviewService) SetStatus(ctx context.Context, id uuid.UUID, status security.IncidentStatus, reviewerID uuid.UUID, notes string) (*security.Incident, error) {
	args := m.Called(ctx, id, status, reviewerID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Incident), args.Error(1)
}

func (m *MockReviewService) ListActivityLogs(ctx context.Context, limit, offset int) ([]*security.LogEntryView, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*security.LogEntryView), args.Error(1)
}

func (m *MockReviewService) ResetAll(ctx context.Context, clearLogs bool) error {
	args := m.Called(ctx, clearLogs)
	return args.Error(0)
}

type MockSweepTrigger struct {
	mock.Mock
}

func (m *MockSweepTrigger) Trigger(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) Simulate(ctx context.Context, actorID uuid.UUID, action security.Action, count int) error {
	args := m.Called(ctx, actorID, action, count)
	return args.Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, actorID uuid.UUID, action security.Action, entityType, entityID string, details *security.EntryDetails) {
	m.Called(ctx, actorID, action, entityType, entityID, details)
}
