package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
)

// AssignmentStatus tracks whether a driver currently has a vehicle.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentUnassigned AssignmentStatus = "unassigned"
)

// Driver is a fleet driver record. The audit layer attributes create, update
// and delete operations on drivers to the acting user, not the driver.
type Driver struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Surname        string           `json:"surname"`
	Phone          string           `json:"phone,omitempty"`
	DateOfBirth    *time.Time       `json:"date_of_birth,omitempty"`
	DateOfHiring   *time.Time       `json:"date_of_hiring,omitempty"`
	AssignedStatus AssignmentStatus `json:"assigned_status"`
	Address        string           `json:"address,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewDriver creates an unassigned driver.
func NewDriver(name, surname, phone, address string) (*Driver, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	if name == "" || surname == "" {
		return nil, errors.NewValidationError("MISSING_NAME", "driver name and surname are required")
	}

	now := time.Now().UTC()
	return &Driver{
		ID:             uuid.New(),
		Name:           name,
		Surname:        surname,
		Phone:          phone,
		AssignedStatus: AssignmentUnassigned,
		Address:        address,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FullName returns the display name used in incident and log listings.
func (d *Driver) FullName() string {
	return d.Name + " " + d.Surname
}

// DriverRepository is the persistence contract for drivers.
type DriverRepository interface {
	Create(ctx context.Context, driver *Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	List(ctx context.Context) ([]*Driver, error)
	Update(ctx context.Context, driver *Driver) error
	Delete(ctx context.Context, id uuid.UUID) error
}
