package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{name: "valid", email: "ops@fleetops.io", password: "s3cret-pass"},
		{name: "normalizes email case", email: "  Ops@FleetOps.io ", password: "s3cret-pass"},
		{name: "missing email", email: "", password: "s3cret-pass", wantErr: "valid email"},
		{name: "not an email", email: "not-an-email", password: "s3cret-pass", wantErr: "valid email"},
		{name: "short password", email: "ops@fleetops.io", password: "short", wantErr: "at least 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := account.NewUser(tt.email, tt.password, "Ada", "Ops")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ops@fleetops.io", u.Email)
			assert.Equal(t, account.RoleUser, u.Role)
			assert.NotEqual(t, tt.password, u.PasswordHash)
			assert.True(t, u.CheckPassword(tt.password))
			assert.False(t, u.CheckPassword("wrong-password"))
			assert.False(t, u.IsAdmin())
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := account.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, r)

	_, err = account.ParseRole("superuser")
	assert.Error(t, err)
}
