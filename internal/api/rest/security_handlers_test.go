package rest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

func authenticatedRequest(method, target string, body []byte, role account.Role) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(r.Context(), contextKeyActorID, uuid.New())
	ctx = context.WithValue(ctx, contextKeyActorRole, role)
	return r.WithContext(ctx)
}

func TestSecurityHandler_ListIncidents(t *testing.T) {
	review := new(MockReviewService)
	handler := NewSecurityHandler(review, new(MockSweepTrigger), new(MockSimulator))

	incidents := []*security.IncidentView{
		{
			Incident: security.Incident{
				ID:            uuid.New(),
				ActorID:       uuid.New(),
				Reason:        "High frequency creation",
				ActivityCount: 5,
				Status:        security.StatusActive,
			},
			ActorEmail: "driver@fleetops.io",
		},
	}
	review.On("ListIncidents", mock.Anything).Return(incidents, nil)

	w := httptest.NewRecorder()
	handler.handleListIncidents(w, authenticatedRequest(http.MethodGet, "/api/v1/security/monitored-users", nil, account.RoleAdmin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "High frequency creation")
	assert.Contains(t, w.Body.String(), "driver@fleetops.io")
	review.AssertExpectations(t)
}

func TestSecurityHandler_ReviewIncident(t *testing.T) {
	incidentID := uuid.New()

	tests := []struct {
		name       string
		id         string
		body       string
		setup      func(review *MockReviewService)
		wantStatus int
	}{
		{
			name: "marks incident investigating",
			id:   incidentID.String(),
			body: `{"status":"investigating","notes":"checking with driver"}`,
			setup: func(review *MockReviewService) {
				review.On("SetStatus", mock.Anything, incidentID, security.StatusInvestigating, mock.Anything, "checking with driver").
					Return(&security.Incident{ID: incidentID, Status: security.StatusInvestigating}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejects unknown status",
			id:         incidentID.String(),
			body:       `{"status":"archived"}`,
			setup:      func(review *MockReviewService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rejects malformed id",
			id:         "not-a-uuid",
			body:       `{"status":"resolved"}`,
			setup:      func(review *MockReviewService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing incident surfaces 404",
			id:   incidentID.String(),
			body: `{"status":"resolved"}`,
			setup: func(review *MockReviewService) {
				review.On("SetStatus", mock.Anything, incidentID, security.StatusResolved, mock.Anything, "").
					Return(nil, errors.NewNotFoundError("incident"))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := new(MockReviewService)
			tt.setup(review)
			handler := NewSecurityHandler(review, new(MockSweepTrigger), new(MockSimulator))

			r := authenticatedRequest(http.MethodPut, "/api/v1/security/monitored-users/"+tt.id, []byte(tt.body), account.RoleAdmin)
			r.SetPathValue("id", tt.id)

			w := httptest.NewRecorder()
			handler.handleReviewIncident(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			review.AssertExpectations(t)
		})
	}
}

func TestSecurityHandler_RunAnalysis(t *testing.T) {
	t.Run("reports completion", func(t *testing.T) {
		trigger := new(MockSweepTrigger)
		trigger.On("Trigger", mock.Anything).Return(nil)
		handler := NewSecurityHandler(new(MockReviewService), trigger, new(MockSimulator))

		w := httptest.NewRecorder()
		handler.handleRunAnalysis(w, authenticatedRequest(http.MethodPost, "/api/v1/security/run-security-analysis", nil, account.RoleAdmin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "security analysis completed")
	})

	t.Run("storage failure surfaces 500", func(t *testing.T) {
		trigger := new(MockSweepTrigger)
		trigger.On("Trigger", mock.Anything).Return(errors.NewStorageError("aggregate", assert.AnError))
		handler := NewSecurityHandler(new(MockReviewService), trigger, new(MockSimulator))

		w := httptest.NewRecorder()
		handler.handleRunAnalysis(w, authenticatedRequest(http.MethodPost, "/api/v1/security/run-security-analysis", nil, account.RoleAdmin))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSecurityHandler_SimulateAttack(t *testing.T) {
	t.Run("runs the simulation for the caller", func(t *testing.T) {
		simulator := new(MockSimulator)
		simulator.On("Simulate", mock.Anything, mock.Anything, security.ActionDelete, 10).Return(nil)
		handler := NewSecurityHandler(new(MockReviewService), new(MockSweepTrigger), simulator)

		body := []byte(`{"actionType":"delete","count":10}`)
		w := httptest.NewRecorder()
		handler.handleSimulateAttack(w, authenticatedRequest(http.MethodPost, "/api/v1/security/simulate-attack", body, account.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		simulator.AssertExpectations(t)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		simulator := new(MockSimulator)
		handler := NewSecurityHandler(new(MockReviewService), new(MockSweepTrigger), simulator)

		for _, body := range []string{`{}`, `{"actionType":"create"}`, `{"count":5}`, `{"actionType":"other","count":5}`} {
			w := httptest.NewRecorder()
			handler.handleSimulateAttack(w, authenticatedRequest(http.MethodPost, "/api/v1/security/simulate-attack", []byte(body), account.RoleUser))
			assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		}
		simulator.AssertNotCalled(t, "Simulate")
	})
}

func TestSecurityHandler_ResetMonitoring(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		clearLogs bool
	}{
		{name: "incidents only by default", body: `{}`, clearLogs: false},
		{name: "clears logs when asked", body: `{"clearLogs":true}`, clearLogs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := new(MockReviewService)
			review.On("ResetAll", mock.Anything, tt.clearLogs).Return(nil)
			handler := NewSecurityHandler(review, new(MockSweepTrigger), new(MockSimulator))

			w := httptest.NewRecorder()
			handler.handleResetMonitoring(w, authenticatedRequest(http.MethodPost, "/api/v1/security/reset-monitoring", []byte(tt.body), account.RoleAdmin))

			assert.Equal(t, http.StatusOK, w.Code)
			review.AssertExpectations(t)
		})
	}
}

func TestSecurityHandler_ListActivityLogs(t *testing.T) {
	review := new(MockReviewService)
	entries := []*security.LogEntryView{
		{
			LogEntry: security.LogEntry{
				ID:         uuid.New(),
				ActorID:    uuid.New(),
				Action:     security.ActionCreate,
				EntityType: "driver",
				OccurredAt: time.Now().UTC(),
			},
			ActorEmail: "ops@fleetops.io",
		},
	}
	review.On("ListActivityLogs", mock.Anything, 25, 50).Return(entries, nil)
	handler := NewSecurityHandler(review, new(MockSweepTrigger), new(MockSimulator))

	w := httptest.NewRecorder()
	handler.handleListActivityLogs(w, authenticatedRequest(http.MethodGet, "/api/v1/security/activity-logs?limit=25&offset=50", nil, account.RoleAdmin))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ops@fleetops.io")
	review.AssertExpectations(t)
}
