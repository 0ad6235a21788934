package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/fleet"
	fleetsvc "github.com/fleetops/fleet-management-backend/internal/service/fleet"
)

// FleetHandler serves the driver and vehicle CRUD endpoints.
type FleetHandler struct {
	fleet     *fleetsvc.Service
	validator *validator.Validate
}

func NewFleetHandler(fleetService *fleetsvc.Service) *FleetHandler {
	return &FleetHandler{
		fleet:     fleetService,
		validator: validator.New(),
	}
}

type driverRequest struct {
	Name         string     `json:"name" validate:"required"`
	Surname      string     `json:"surname" validate:"required"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	DateOfHiring *time.Time `json:"date_of_hiring"`
}

type driverUpdateRequest struct {
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	DateOfHiring *time.Time `json:"date_of_hiring"`
}

type vehicleRequest struct {
	Plate    string `json:"plate" validate:"required"`
	Brand    string `json:"brand" validate:"required"`
	Model    string `json:"model" validate:"required"`
	Year     int    `json:"year"`
	Status   string `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	Location string `json:"location"`
	Mileage  int    `json:"mileage" validate:"gte=0"`
}

type vehicleUpdateRequest struct {
	Plate    string `json:"plate"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Status   string `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	Location string `json:"location"`
	Mileage  int    `json:"mileage" validate:"gte=0"`
}

func (h *FleetHandler) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	driver, err := h.fleet.CreateDriver(r.Context(), fleetsvc.DriverInput{
		Name:         req.Name,
		Surname:      req.Surname,
		Phone:        req.Phone,
		Address:      req.Address,
		DateOfBirth:  req.DateOfBirth,
		DateOfHiring: req.DateOfHiring,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, driver)
}

func (h *FleetHandler) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.fleet.ListDrivers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (h *FleetHandler) handleGetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	driver, err := h.fleet.GetDriver(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

func (h *FleetHandler) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req driverUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	driver, err := h.fleet.UpdateDriver(r.Context(), id, fleetsvc.DriverInput{
		Name:         req.Name,
		Surname:      req.Surname,
		Phone:        req.Phone,
		Address:      req.Address,
		DateOfBirth:  req.DateOfBirth,
		DateOfHiring: req.DateOfHiring,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

func (h *FleetHandler) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.fleet.DeleteDriver(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	vehicle, err := h.fleet.CreateVehicle(r.Context(), fleetsvc.VehicleInput{
		Plate:    req.Plate,
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     req.Year,
		Status:   req.Status,
		Location: req.Location,
		Mileage:  req.Mileage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

func (h *FleetHandler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *FleetHandler) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.fleet.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *FleetHandler) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req vehicleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	vehicle, err := h.fleet.UpdateVehicle(r.Context(), id, fleetsvc.VehicleInput{
		Plate:    req.Plate,
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     req.Year,
		Status:   req.Status,
		Location: req.Location,
		Mileage:  req.Mileage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *FleetHandler) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.fleet.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fleetStatisticsResponse struct {
	ExecutionTimeMs int64                   `json:"execution_time_ms"`
	Statistics      []fleet.BrandStatistics `json:"statistics"`
}

// handleFleetStatisticsByBrand reports per-brand fleet aggregates along with
// how long the aggregation took.
func (h *FleetHandler) handleFleetStatisticsByBrand(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	stats, err := h.fleet.FleetStatisticsByBrand(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fleetStatisticsResponse{
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		Statistics:      stats,
	})
}

// pathID parses the {id} route segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errors.NewValidationError("INVALID_ID", "id must be a valid UUID")
	}
	return id, nil
}
