package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

func TestActionFromMethod(t *testing.T) {
	tests := []struct {
		method string
		want   security.Action
	}{
		{"POST", security.ActionCreate},
		{"PUT", security.ActionUpdate},
		{"PATCH", security.ActionUpdate},
		{"DELETE", security.ActionDelete},
		{"GET", security.ActionOther},
		{"HEAD", security.ActionOther},
		{"OPTIONS", security.ActionOther},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, security.ActionFromMethod(tt.method))
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    security.Action
		wantErr bool
	}{
		{name: "create", input: "create", want: security.ActionCreate},
		{name: "login", input: "login", want: security.ActionLogin},
		{name: "unknown", input: "read", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "CREATE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := security.ParseAction(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogEntry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	tests := []struct {
		name       string
		actorID    uuid.UUID
		action     security.Action
		entityType string
		wantErr    string
	}{
		{
			name:       "valid create entry",
			actorID:    actorID,
			action:     security.ActionCreate,
			entityType: "driver",
		},
		{
			name:       "valid login entry",
			actorID:    actorID,
			action:     security.ActionLogin,
			entityType: "auth",
		},
		{
			name:       "missing actor",
			actorID:    uuid.Nil,
			action:     security.ActionCreate,
			entityType: "driver",
			wantErr:    "actor ID is required",
		},
		{
			name:       "non-mutating action",
			actorID:    actorID,
			action:     security.ActionOther,
			entityType: "driver",
			wantErr:    "is not logged",
		},
		{
			name:    "missing entity type",
			actorID: actorID,
			action:  security.ActionDelete,
			wantErr: "entity type is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := security.NewLogEntry(tt.actorID, tt.action, tt.entityType, "", nil, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, entry.ID)
			assert.Equal(t, tt.actorID, entry.ActorID)
			assert.Equal(t, tt.action, entry.Action)
			assert.Equal(t, now, entry.OccurredAt)
		})
	}
}

func TestNewLogEntry_Details(t *testing.T) {
	entry, err := security.NewLogEntry(uuid.New(), security.ActionUpdate, "vehicle", "42", &security.EntryDetails{
		Method: "PUT",
		Path:   "/api/v1/vehicles/42",
		Params: map[string]string{"id": "42"},
	}, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"PUT","path":"/api/v1/vehicles/42","params":{"id":"42"}}`, string(entry.Details))
}

func TestActorActivity_ObservedWindow(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		first time.Time
		last  time.Time
		want  time.Duration
	}{
		{
			name:  "burst on a single timestamp floors to one second",
			first: base,
			last:  base,
			want:  time.Second,
		},
		{
			name:  "sub-second burst floors to one second",
			first: base,
			last:  base.Add(300 * time.Millisecond),
			want:  time.Second,
		},
		{
			name:  "spread over minutes",
			first: base,
			last:  base.Add(3 * time.Minute),
			want:  3 * time.Minute,
		},
		{
			name:  "rounds to whole seconds",
			first: base,
			last:  base.Add(90*time.Second + 700*time.Millisecond),
			want:  91 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := security.ActorActivity{ActorID: uuid.New(), Count: 5, First: tt.first, Last: tt.last}
			assert.Equal(t, tt.want, a.ObservedWindow())
		})
	}
}
