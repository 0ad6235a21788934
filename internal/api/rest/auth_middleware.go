package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
)

// TokenVerifier resolves a bearer token to the authenticated actor.
type TokenVerifier interface {
	VerifyToken(tokenString string) (uuid.UUID, account.Role, error)
}

// AuthMiddleware validates JWT bearer tokens and puts the actor identity in
// the request context. Public endpoints pass through untouched.
type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, errors.NewUnauthorizedError("authorization required"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, errors.NewUnauthorizedError("invalid authorization format"))
				return
			}

			actorID, role, err := m.verifier.VerifyToken(parts[1])
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyActorID, actorID)
			ctx = context.WithValue(ctx, contextKeyActorRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin rejects requests whose authenticated actor is not an admin.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r.Context())
		if !ok || role != account.RoleAdmin {
			writeError(w, errors.NewForbiddenError("admin role required"))
			return
		}
		next(w, r)
	}
}

func isPublicEndpoint(path string) bool {
	publicEndpoints := []string{
		"/health",
		"/metrics",
		"/api/v1/auth/register",
		"/api/v1/auth/login",
	}

	for _, endpoint := range publicEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}

func actorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyActorID).(uuid.UUID)
	return id, ok
}

func roleFromContext(ctx context.Context) (account.Role, bool) {
	role, ok := ctx.Value(contextKeyActorRole).(account.Role)
	return role, ok
}
