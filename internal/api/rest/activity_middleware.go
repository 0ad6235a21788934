package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/fleetops/fleet-management-backend/internal/domain/security"
	securitysvc "github.com/fleetops/fleet-management-backend/internal/service/security"
)

// captureLimit bounds how much request and response body the activity trail
// keeps per entry.
const captureLimit = 8 << 10

// auditedEntities lists the resource collections the activity trail covers.
// Security and auth endpoints stay out so administrative operations never
// feed the anomaly counters they operate on.
var auditedEntities = map[string]bool{
	"driver":  true,
	"vehicle": true,
}

// ActivityMiddleware appends an audit entry for every mutating request an
// authenticated actor makes against an audited resource collection. The
// append happens after the response is written, records failed mutations the
// same as successful ones, and never blocks or fails the request.
type ActivityMiddleware struct {
	recorder securitysvc.Recorder
}

func NewActivityMiddleware(recorder securitysvc.Recorder) *ActivityMiddleware {
	return &ActivityMiddleware{recorder: recorder}
}

func (m *ActivityMiddleware) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := security.ActionFromMethod(r.Method)
			if !action.IsMutating() {
				next.ServeHTTP(w, r)
				return
			}

			actorID, ok := actorFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			entityType, entityID := entityFromPath(r.URL.Path)
			if !auditedEntities[entityType] {
				next.ServeHTTP(w, r)
				return
			}

			var reqBody []byte
			if r.Body != nil {
				limited, err := io.ReadAll(io.LimitReader(r.Body, captureLimit))
				if err == nil {
					reqBody = limited
					r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(limited), r.Body))
				}
			}

			wrapped := &recordingResponseWriter{
				basicResponseWriter: basicResponseWriter{ResponseWriter: w, status: http.StatusOK},
			}

			next.ServeHTTP(wrapped, r)

			if action == security.ActionCreate {
				entityID = createdEntityID(wrapped.body.Bytes())
			}

			details := &security.EntryDetails{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
			}
			if json.Valid(reqBody) {
				details.Body = reqBody
			}

			m.recorder.Record(r.Context(), actorID, action, entityType, entityID, details)
		})
	}
}

// recordingResponseWriter tees the response body so the middleware can pull
// the generated ID out of create responses.
type recordingResponseWriter struct {
	basicResponseWriter
	body bytes.Buffer
}

func (rw *recordingResponseWriter) Write(b []byte) (int, error) {
	if rw.body.Len() < captureLimit {
		rw.body.Write(b[:min(len(b), captureLimit-rw.body.Len())])
	}
	return rw.basicResponseWriter.Write(b)
}

// entityFromPath derives the audited entity from an API path such as
// /api/v1/drivers/{id}. The collection segment is singularized, the segment
// after it (when present) is the entity ID.
func entityFromPath(path string) (string, string) {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/api/v1"), "/")
	if trimmed == "" {
		return "", ""
	}

	segments := strings.Split(trimmed, "/")
	entityType := strings.TrimSuffix(segments[0], "s")

	var entityID string
	if len(segments) > 1 {
		entityID = segments[1]
	}

	return entityType, entityID
}

// createdEntityID extracts the "id" field from a create response payload.
func createdEntityID(body []byte) string {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.ID
}
