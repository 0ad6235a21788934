package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
	securitysvc "github.com/fleetops/fleet-management-backend/internal/service/security"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles user registration and login. Successful logins are
// recorded as activity entries, which is what the login threshold watches.
type Service struct {
	users       account.Repository
	recorder    securitysvc.Recorder
	jwtSecret   []byte
	tokenExpiry time.Duration
	clock       security.Clock
	logger      *slog.Logger
}

// NewService creates the authentication service
func NewService(
	users account.Repository,
	recorder securitysvc.Recorder,
	jwtSecret []byte,
	tokenExpiry time.Duration,
	clock security.Clock,
	logger *slog.Logger,
) *Service {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &Service{
		users:       users,
		recorder:    recorder,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		clock:       clock,
		logger:      logger,
	}
}

// Register creates a new user account with the user role.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*account.User, error) {
	user, err := account.NewUser(email, password, firstName, lastName)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues a signed token. Lookup failures and
// bad passwords both return invalid-credentials so the response does not leak
// which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (string, *account.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.CheckPassword(password) {
		return "", nil, errors.ErrInvalidCredentials
	}

	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login", "user_id", user.ID, "error", err)
	}

	token, err := s.issueToken(user, now)
	if err != nil {
		return "", nil, errors.NewInternalError("failed to sign token").WithCause(err)
	}

	s.recorder.Record(ctx, user.ID, security.ActionLogin, "auth", "", &security.EntryDetails{
		Method: "POST",
		Path:   "/api/v1/auth/login",
	})

	return token, user, nil
}

func (s *Service) issueToken(user *account.User, now time.Time) (string, error) {
	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    "fleet-management-backend",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken parses and validates a token, returning the actor identity.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, account.Role, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", errors.NewUnauthorizedError("invalid or expired token")
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errors.NewUnauthorizedError("invalid token subject")
	}

	role, err := account.ParseRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", errors.NewUnauthorizedError("invalid token role")
	}

	return actorID, role, nil
}
