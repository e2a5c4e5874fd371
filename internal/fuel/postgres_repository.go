package fuel

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL fuel repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Add appends a fuel entry.
func (r *PostgresRepository) Add(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO fuel_entries (id, vehicle_id, route_id, fuel_consumed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.VehicleID,
		entry.RouteID,
		entry.FuelConsumed,
		entry.CreatedAt,
	)
	return err
}

// ListByVehicle retrieves a vehicle's fuel entries, newest first.
func (r *PostgresRepository) ListByVehicle(ctx context.Context, vehicleID string, opts ListOptions) (*ListResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM fuel_entries WHERE vehicle_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, vehicleID).Scan(&total); err != nil {
		return nil, err
	}

	query := `
		SELECT id, vehicle_id, route_id, fuel_consumed, created_at
		FROM fuel_entries
		WHERE vehicle_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, vehicleID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.RouteID, &e.FuelConsumed, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{Items: entries, TotalItems: total}, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
