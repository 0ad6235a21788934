package database

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/fleet"
)

// DriverRepository implements fleet.DriverRepository over PostgreSQL.
type DriverRepository struct {
	db *pgxpool.Pool
}

func NewDriverRepository(db *pgxpool.Pool) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, driver *fleet.Driver) error {
	query := `
		INSERT INTO drivers (id, name, surname, phone, date_of_birth, date_of_hiring,
			assigned_status, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		driver.ID, driver.Name, driver.Surname, nullString(driver.Phone),
		driver.DateOfBirth, driver.DateOfHiring, string(driver.AssignedStatus),
		nullString(driver.Address), driver.CreatedAt, driver.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("create driver", err)
	}
	return nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	driver, err := r.scanDriver(r.db.QueryRow(ctx, driverSelect+` WHERE id = $1`, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrDriverNotFound
		}
		return nil, errors.NewStorageError("get driver", err)
	}
	return driver, nil
}

func (r *DriverRepository) List(ctx context.Context) ([]*fleet.Driver, error) {
	rows, err := r.db.Query(ctx, driverSelect+` ORDER BY surname, name`)
	if err != nil {
		return nil, errors.NewStorageError("list drivers", err)
	}
	defer rows.Close()

	var drivers []*fleet.Driver
	for rows.Next() {
		driver, err := r.scanDriver(rows)
		if err != nil {
			return nil, errors.NewStorageError("scan driver", err)
		}
		drivers = append(drivers, driver)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate drivers", err)
	}
	return drivers, nil
}

func (r *DriverRepository) Update(ctx context.Context, driver *fleet.Driver) error {
	query := `
		UPDATE drivers
		SET name = $2, surname = $3, phone = $4, date_of_birth = $5,
			date_of_hiring = $6, assigned_status = $7, address = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		driver.ID, driver.Name, driver.Surname, nullString(driver.Phone),
		driver.DateOfBirth, driver.DateOfHiring, string(driver.AssignedStatus),
		nullString(driver.Address), driver.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("update driver", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrDriverNotFound
	}
	return nil
}

func (r *DriverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return errors.NewStorageError("delete driver", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrDriverNotFound
	}
	return nil
}

const driverSelect = `
		SELECT id, name, surname, COALESCE(phone, ''), date_of_birth, date_of_hiring,
		       assigned_status, COALESCE(address, ''), created_at, updated_at
		FROM drivers`

func (r *DriverRepository) scanDriver(row pgx.Row) (*fleet.Driver, error) {
	var d fleet.Driver
	var status string
	if err := row.Scan(&d.ID, &d.Name, &d.Surname, &d.Phone, &d.DateOfBirth,
		&d.DateOfHiring, &status, &d.Address, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.AssignedStatus = fleet.AssignmentStatus(status)
	return &d, nil
}

// VehicleRepository implements fleet.VehicleRepository over PostgreSQL.
type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *fleet.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate, brand, model, year, status, location, mileage,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		vehicle.ID, vehicle.Plate, vehicle.Brand, vehicle.Model, vehicle.Year,
		string(vehicle.Status), nullString(vehicle.Location), vehicle.Mileage,
		vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("create vehicle", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	vehicle, err := r.scanVehicle(r.db.QueryRow(ctx, vehicleSelect+` WHERE id = $1`, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrVehicleNotFound
		}
		return nil, errors.NewStorageError("get vehicle", err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]*fleet.Vehicle, error) {
	rows, err := r.db.Query(ctx, vehicleSelect+` ORDER BY plate`)
	if err != nil {
		return nil, errors.NewStorageError("list vehicles", err)
	}
	defer rows.Close()

	var vehicles []*fleet.Vehicle
	for rows.Next() {
		vehicle, err := r.scanVehicle(rows)
		if err != nil {
			return nil, errors.NewStorageError("scan vehicle", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate vehicles", err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) StatisticsByBrand(ctx context.Context) ([]fleet.BrandStatistics, error) {
	query := `
		SELECT brand,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COALESCE(AVG(mileage), 0)::float8,
		       COALESCE(MIN(year), 0),
		       COALESCE(MAX(year), 0)
		FROM vehicles
		GROUP BY brand
		ORDER BY COUNT(*) DESC, brand`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.NewStorageError("aggregate vehicles by brand", err)
	}
	defer rows.Close()

	var stats []fleet.BrandStatistics
	for rows.Next() {
		var s fleet.BrandStatistics
		if err := rows.Scan(&s.Brand, &s.VehicleCount, &s.ActiveCount,
			&s.AverageMileage, &s.OldestYear, &s.NewestYear); err != nil {
			return nil, errors.NewStorageError("scan brand statistics", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterate brand statistics", err)
	}
	return stats, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *fleet.Vehicle) error {
	query := `
		UPDATE vehicles
		SET plate = $2, brand = $3, model = $4, year = $5, status = $6,
			location = $7, mileage = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		vehicle.ID, vehicle.Plate, vehicle.Brand, vehicle.Model, vehicle.Year,
		string(vehicle.Status), nullString(vehicle.Location), vehicle.Mileage,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("update vehicle", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return errors.NewStorageError("delete vehicle", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrVehicleNotFound
	}
	return nil
}

const vehicleSelect = `
		SELECT id, plate, brand, model, COALESCE(year, 0), status,
		       COALESCE(location, ''), COALESCE(mileage, 0), created_at, updated_at
		FROM vehicles`

func (r *VehicleRepository) scanVehicle(row pgx.Row) (*fleet.Vehicle, error) {
	var v fleet.Vehicle
	var status string
	if err := row.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year, &status,
		&v.Location, &v.Mileage, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Status = fleet.VehicleStatus(status)
	return &v, nil
}
