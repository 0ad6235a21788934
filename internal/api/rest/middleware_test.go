package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an ID", func(t *testing.T) {
		var got string
		handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = r.Context().Value(contextKeyRequestID).(string)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.NotEmpty(t, got)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("honors upstream ID", func(t *testing.T) {
		handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest(http.MethodGet, "/health", nil)
		r.Header.Set("X-Request-ID", "req-from-proxy")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "req-from-proxy", w.Header().Get("X-Request-ID"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/drivers", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := newInMemoryRateLimiter(1, 2)
	handler := rateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/drivers", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// Another client has its own bucket.
	r := httptest.NewRequest(http.MethodGet, "/api/v1/drivers", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name: "x-forwarded-for wins",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
				r.RemoteAddr = "10.0.0.9:4444"
			},
			want: "203.0.113.7",
		},
		{
			name: "x-real-ip next",
			setup: func(r *http.Request) {
				r.Header.Set("X-Real-IP", "198.51.100.4")
				r.RemoteAddr = "10.0.0.9:4444"
			},
			want: "198.51.100.4",
		},
		{
			name:  "falls back to remote addr without port",
			setup: func(r *http.Request) { r.RemoteAddr = "192.0.2.1:8080" },
			want:  "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		role       any
		wantStatus int
	}{
		{name: "admin allowed", role: account.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user forbidden", role: account.RoleUser, wantStatus: http.StatusForbidden},
		{name: "missing role forbidden", role: nil, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/security/monitored-users", nil)
			if tt.role != nil {
				ctx := context.WithValue(r.Context(), contextKeyActorID, uuid.New())
				ctx = context.WithValue(ctx, contextKeyActorRole, tt.role)
				r = r.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			handler(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBasicResponseWriter_SingleHeaderWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &basicResponseWriter{ResponseWriter: rec, status: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	fmt.Fprint(rw, "payload")

	assert.Equal(t, http.StatusCreated, rw.status)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, len("payload"), rw.bytes)
}
