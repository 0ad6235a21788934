package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
	securitysvc "github.com/fleetops/fleet-management-backend/internal/service/security"
)

// SweepTrigger starts an on-demand detection sweep. Satisfied by the
// monitoring scheduler so manual and timed sweeps share one entry point.
type SweepTrigger interface {
	Trigger(ctx context.Context) error
}

// SecurityHandler serves the monitoring and incident review endpoints.
type SecurityHandler struct {
	review    securitysvc.ReviewService
	trigger   SweepTrigger
	simulator securitysvc.Simulator
	validator *validator.Validate
}

func NewSecurityHandler(
	review securitysvc.ReviewService,
	trigger SweepTrigger,
	simulator securitysvc.Simulator,
) *SecurityHandler {
	return &SecurityHandler{
		review:    review,
		trigger:   trigger,
		simulator: simulator,
		validator: validator.New(),
	}
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=investigating resolved"`
	Notes  string `json:"notes"`
}

type simulateAttackRequest struct {
	ActionType string `json:"actionType" validate:"required,oneof=create update delete login"`
	Count      int    `json:"count" validate:"required,gt=0"`
}

type resetMonitoringRequest struct {
	ClearLogs bool `json:"clearLogs"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *SecurityHandler) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.review.ListIncidents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (h *SecurityHandler) handleReviewIncident(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	status, err := security.ParseIncidentStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	reviewerID, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewUnauthorizedError("authentication required"))
		return
	}

	incident, err := h.review.SetStatus(r.Context(), id, status, reviewerID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incident)
}

func (h *SecurityHandler) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.trigger.Trigger(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "security analysis completed"})
}

func (h *SecurityHandler) handleSimulateAttack(w http.ResponseWriter, r *http.Request) {
	var req simulateAttackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	action, err := security.ParseAction(req.ActionType)
	if err != nil {
		writeError(w, err)
		return
	}

	actorID, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.simulator.Simulate(r.Context(), actorID, action, req.Count); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "attack simulation completed"})
}

func (h *SecurityHandler) handleResetMonitoring(w http.ResponseWriter, r *http.Request) {
	var req resetMonitoringRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeValidationError(w, "invalid request body")
			return
		}
	}

	if err := h.review.ResetAll(r.Context(), req.ClearLogs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "monitoring state reset"})
}

func (h *SecurityHandler) handleListActivityLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	logs, err := h.review.ListActivityLogs(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
