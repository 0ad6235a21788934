package auth

import (
	"context"
	"io"
	"log/slog"
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

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actorID uuid.UUID, action security.Action, entityType, entityID string, details *security.EntryDetails) {
	m.Called(ctx, actorID, action, entityType, entityID, details)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(users *mockUserRepo, rec *mockRecorder, clock security.Clock) *Service {
	return NewService(users, rec, []byte("test-secret"), time.Hour, clock, testLogger())
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	rec := new(mockRecorder)

	users.On("Create", ctx, mock.MatchedBy(func(u *account.User) bool {
		return u.Email == "new@fleetops.io" && u.Role == account.RoleUser
	})).Return(nil)

	svc := newService(users, rec, nil)
	user, err := svc.Register(ctx, "new@fleetops.io", "long-enough-pass", "New", "User")
	require.NoError(t, err)
	assert.Equal(t, account.RoleUser, user.Role)

	_, err = svc.Register(ctx, "bad-email", "long-enough-pass", "", "")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := &security.MockClock{CurrentTime: now}

	user, err := account.NewUser("ops@fleetops.io", "sup3r-secret", "Ada", "Ops")
	require.NoError(t, err)

	t.Run("issues verifiable token and records login", func(t *testing.T) {
		users := new(mockUserRepo)
		rec := new(mockRecorder)

		users.On("GetByEmail", ctx, "ops@fleetops.io").Return(user, nil)
		users.On("UpdateLastLogin", ctx, user.ID, now).Return(nil)
		rec.On("Record", ctx, user.ID, security.ActionLogin, "auth", "", mock.Anything).Return()

		svc := newService(users, rec, clock)
		token, loggedIn, err := svc.Login(ctx, "ops@fleetops.io", "sup3r-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)

		actorID, role, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, actorID)
		assert.Equal(t, account.RoleUser, role)

		rec.AssertCalled(t, "Record", ctx, user.ID, security.ActionLogin, "auth", "", mock.Anything)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		users := new(mockUserRepo)
		rec := new(mockRecorder)
		users.On("GetByEmail", ctx, "ops@fleetops.io").Return(user, nil)

		svc := newService(users, rec, clock)
		_, _, err := svc.Login(ctx, "ops@fleetops.io", "wrong")
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnauthorized))
		rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		users := new(mockUserRepo)
		rec := new(mockRecorder)
		users.On("GetByEmail", ctx, "ghost@fleetops.io").Return(nil, errors.ErrUserNotFound)

		svc := newService(users, rec, clock)
		_, _, err := svc.Login(ctx, "ghost@fleetops.io", "whatever")
		require.Error(t, err)
		assert.Equal(t, errors.ErrInvalidCredentials.Message, err.(*errors.AppError).Message)
	})
}

func TestService_VerifyToken(t *testing.T) {
	users := new(mockUserRepo)
	rec := new(mockRecorder)
	svc := newService(users, rec, nil)

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.VerifyToken("not.a.token")
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		past := &security.MockClock{CurrentTime: time.Now().Add(-48 * time.Hour)}
		issuing := NewService(users, rec, []byte("test-secret"), time.Hour, past, testLogger())
		user, err := account.NewUser("old@fleetops.io", "long-enough-pass", "", "")
		require.NoError(t, err)
		token, err := issuing.issueToken(user, past.Now())
		require.NoError(t, err)

		_, _, err = svc.VerifyToken(token)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnauthorized))
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewService(users, rec, []byte("other-secret"), time.Hour, nil, testLogger())
		user, err := account.NewUser("x@fleetops.io", "long-enough-pass", "", "")
		require.NoError(t, err)
		token, err := other.issueToken(user, time.Now())
		require.NoError(t, err)

		_, _, err = svc.VerifyToken(token)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnauthorized))
	})
}
