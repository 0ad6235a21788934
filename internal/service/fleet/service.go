package fleet

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-management-backend/internal/domain/fleet"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
)

// Service exposes driver and vehicle CRUD. These are the mutating operations
// the activity middleware observes.
type Service struct {
	drivers  fleet.DriverRepository
	vehicles fleet.VehicleRepository
	clock    security.Clock
}

// NewService creates the fleet service
func NewService(drivers fleet.DriverRepository, vehicles fleet.VehicleRepository, clock security.Clock) *Service {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &Service{drivers: drivers, vehicles: vehicles, clock: clock}
}

// DriverInput carries the mutable driver fields.
type DriverInput struct {
	Name         string
	Surname      string
	Phone        string
	Address      string
	DateOfBirth  *time.Time
	DateOfHiring *time.Time
}

func (s *Service) CreateDriver(ctx context.Context, in DriverInput) (*fleet.Driver, error) {
	driver, err := fleet.NewDriver(in.Name, in.Surname, in.Phone, in.Address)
	if err != nil {
		return nil, err
	}
	driver.DateOfBirth = in.DateOfBirth
	driver.DateOfHiring = in.DateOfHiring

	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *Service) GetDriver(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	return s.drivers.GetByID(ctx, id)
}

func (s *Service) ListDrivers(ctx context.Context) ([]*fleet.Driver, error) {
	return s.drivers.List(ctx)
}

func (s *Service) UpdateDriver(ctx context.Context, id uuid.UUID, in DriverInput) (*fleet.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		driver.Name = in.Name
	}
	if in.Surname != "" {
		driver.Surname = in.Surname
	}
	if in.Phone != "" {
		driver.Phone = in.Phone
	}
	if in.Address != "" {
		driver.Address = in.Address
	}
	if in.DateOfBirth != nil {
		driver.DateOfBirth = in.DateOfBirth
	}
	if in.DateOfHiring != nil {
		driver.DateOfHiring = in.DateOfHiring
	}
	driver.UpdatedAt = s.clock.Now()

	if err := s.drivers.Update(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *Service) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	return s.drivers.Delete(ctx, id)
}

// VehicleInput carries the mutable vehicle fields.
type VehicleInput struct {
	Plate    string
	Brand    string
	Model    string
	Year     int
	Status   string
	Location string
	Mileage  int
}

func (s *Service) CreateVehicle(ctx context.Context, in VehicleInput) (*fleet.Vehicle, error) {
	vehicle, err := fleet.NewVehicle(in.Plate, in.Brand, in.Model, in.Year)
	if err != nil {
		return nil, err
	}
	vehicle.Location = in.Location
	vehicle.Mileage = in.Mileage
	if in.Status != "" {
		status, err := fleet.ParseVehicleStatus(in.Status)
		if err != nil {
			return nil, err
		}
		vehicle.Status = status
	}

	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *Service) ListVehicles(ctx context.Context) ([]*fleet.Vehicle, error) {
	return s.vehicles.List(ctx)
}

func (s *Service) UpdateVehicle(ctx context.Context, id uuid.UUID, in VehicleInput) (*fleet.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Plate != "" {
		vehicle.Plate = in.Plate
	}
	if in.Brand != "" {
		vehicle.Brand = in.Brand
	}
	if in.Model != "" {
		vehicle.Model = in.Model
	}
	if in.Year != 0 {
		vehicle.Year = in.Year
	}
	if in.Location != "" {
		vehicle.Location = in.Location
	}
	if in.Mileage != 0 {
		vehicle.Mileage = in.Mileage
	}
	if in.Status != "" {
		status, err := fleet.ParseVehicleStatus(in.Status)
		if err != nil {
			return nil, err
		}
		vehicle.Status = status
	}
	vehicle.UpdatedAt = s.clock.Now()

	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *Service) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.vehicles.Delete(ctx, id)
}

// FleetStatisticsByBrand reports per-brand fleet aggregates. Brands with no
// vehicles do not appear; an empty fleet yields an empty slice.
func (s *Service) FleetStatisticsByBrand(ctx context.Context) ([]fleet.BrandStatistics, error) {
	stats, err := s.vehicles.StatisticsByBrand(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []fleet.BrandStatistics{}
	}
	return stats, nil
}
