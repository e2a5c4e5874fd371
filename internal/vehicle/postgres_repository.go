package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL vehicle repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const vehicleColumns = `
	id, user_id, license_plate, model, manufacturer, production_year,
	fuel_capacity, average_consumption, mileage, route_records,
	last_maintenance, created_at, updated_at
`

// Get retrieves a vehicle by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Vehicle, error) {
	query := `SELECT` + vehicleColumns + `FROM vehicles WHERE id = $1`
	return r.scanVehicle(ctx, query, id)
}

// GetByPlate retrieves a vehicle by license plate.
func (r *PostgresRepository) GetByPlate(ctx context.Context, licensePlate string) (*Vehicle, error) {
	query := `SELECT` + vehicleColumns + `FROM vehicles WHERE license_plate = $1`
	return r.scanVehicle(ctx, query, licensePlate)
}

// scanVehicle scans a vehicle from a query result.
func (r *PostgresRepository) scanVehicle(ctx context.Context, query string, args ...interface{}) (*Vehicle, error) {
	var v Vehicle

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&v.ID,
		&v.UserID,
		&v.LicensePlate,
		&v.Model,
		&v.Manufacturer,
		&v.ProductionYear,
		&v.FuelCapacity,
		&v.AverageConsumption,
		&v.Mileage,
		&v.RouteRecords,
		&v.LastMaintenance,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return &v, nil
}

// List retrieves vehicles ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	return r.query(ctx, "", nil, opts)
}

// Search retrieves vehicles matching the criteria, paginated.
func (r *PostgresRepository) Search(ctx context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error) {
	var clauses []string
	var args []interface{}

	if criteria.LicensePlate != "" {
		args = append(args, "%"+criteria.LicensePlate+"%")
		clauses = append(clauses, fmt.Sprintf("license_plate ILIKE $%d", len(args)))
	}
	if criteria.Model != "" {
		args = append(args, "%"+criteria.Model+"%")
		clauses = append(clauses, fmt.Sprintf("model ILIKE $%d", len(args)))
	}
	if criteria.Manufacturer != "" {
		args = append(args, "%"+criteria.Manufacturer+"%")
		clauses = append(clauses, fmt.Sprintf("manufacturer ILIKE $%d", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	return r.query(ctx, where, args, opts)
}

func (r *PostgresRepository) query(ctx context.Context, where string, args []interface{}, opts ListOptions) (*ListResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	countQuery := `SELECT COUNT(*) FROM vehicles ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT%sFROM vehicles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		vehicleColumns, where, len(args)+1, len(args)+2,
	)
	pagedArgs := append(append([]interface{}{}, args...), pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, pagedArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		var v Vehicle
		err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.LicensePlate,
			&v.Model,
			&v.Manufacturer,
			&v.ProductionYear,
			&v.FuelCapacity,
			&v.AverageConsumption,
			&v.Mileage,
			&v.RouteRecords,
			&v.LastMaintenance,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{Items: vehicles, TotalItems: total}, nil
}

// Create creates a new vehicle.
func (r *PostgresRepository) Create(ctx context.Context, v *Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, user_id, license_plate, model, manufacturer, production_year,
			fuel_capacity, average_consumption, mileage, route_records,
			last_maintenance, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.UserID,
		v.LicensePlate,
		v.Model,
		v.Manufacturer,
		v.ProductionYear,
		v.FuelCapacity,
		v.AverageConsumption,
		v.Mileage,
		v.RouteRecords,
		v.LastMaintenance,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

// Update updates an existing vehicle.
func (r *PostgresRepository) Update(ctx context.Context, v *Vehicle) error {
	query := `
		UPDATE vehicles SET
			model = $2,
			manufacturer = $3,
			production_year = $4,
			fuel_capacity = $5,
			average_consumption = $6,
			mileage = $7,
			route_records = $8,
			last_maintenance = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		v.ID,
		v.Model,
		v.Manufacturer,
		v.ProductionYear,
		v.FuelCapacity,
		v.AverageConsumption,
		v.Mileage,
		v.RouteRecords,
		v.LastMaintenance,
		v.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

// Delete deletes a vehicle by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM vehicles WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
