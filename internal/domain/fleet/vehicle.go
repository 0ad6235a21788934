package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
)

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleRetired     VehicleStatus = "retired"
)

// ParseVehicleStatus validates a raw status string.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(s) {
	case VehicleActive, VehicleMaintenance, VehicleRetired:
		return VehicleStatus(s), nil
	default:
		return "", errors.NewValidationError("INVALID_STATUS", "vehicle status must be active, maintenance or retired")
	}
}

// Vehicle is a fleet vehicle record.
type Vehicle struct {
	ID        uuid.UUID     `json:"id"`
	Plate     string        `json:"plate"`
	Brand     string        `json:"brand"`
	Model     string        `json:"model"`
	Year      int           `json:"year,omitempty"`
	Status    VehicleStatus `json:"status"`
	Location  string        `json:"location,omitempty"`
	Mileage   int           `json:"mileage,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewVehicle creates an active vehicle.
func NewVehicle(plate, brand, model string, year int) (*Vehicle, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, errors.NewValidationError("MISSING_PLATE", "vehicle plate is required")
	}
	if brand == "" || model == "" {
		return nil, errors.NewValidationError("MISSING_MODEL", "vehicle brand and model are required")
	}

	now := time.Now().UTC()
	return &Vehicle{
		ID:        uuid.New(),
		Plate:     plate,
		Brand:     brand,
		Model:     model,
		Year:      year,
		Status:    VehicleActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BrandStatistics is the fleet aggregated over one brand.
type BrandStatistics struct {
	Brand          string  `json:"brand"`
	VehicleCount   int     `json:"vehicle_count"`
	ActiveCount    int     `json:"active_count"`
	AverageMileage float64 `json:"average_mileage"`
	OldestYear     int     `json:"oldest_year"`
	NewestYear     int     `json:"newest_year"`
}

// VehicleRepository is the persistence contract for vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	List(ctx context.Context) ([]*Vehicle, error)
	Update(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error

	// StatisticsByBrand aggregates the whole fleet grouped by brand,
	// largest group first.
	StatisticsByBrand(ctx context.Context) ([]BrandStatistics, error)
}
