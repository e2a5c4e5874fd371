package route

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL route repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const routeColumns = `
	r.id, r.user_id, r.vehicle_id, r.license_plate, r.distance_km,
	r.estimated_time_sec, r.status, r.start_time, r.end_time, r.created_at
`

// Get retrieves a route by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Route, error) {
	query := `SELECT` + routeColumns + `FROM routes r WHERE r.id = $1`

	var rt Route
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.VehicleID,
		&rt.LicensePlate,
		&rt.DistanceKm,
		&rt.EstimatedTimeSec,
		&rt.Status,
		&rt.StartTime,
		&rt.EndTime,
		&rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	if err := r.loadWaypoints(ctx, &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListByVehicle retrieves a vehicle's routes, newest first.
func (r *PostgresRepository) ListByVehicle(ctx context.Context, vehicleID string, opts ListOptions) (*ListResult, error) {
	return r.query(ctx, "WHERE r.vehicle_id = $1", []interface{}{vehicleID}, opts)
}

// Search retrieves routes matching the criteria, paginated.
func (r *PostgresRepository) Search(ctx context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error) {
	var clauses []string
	var args []interface{}

	if criteria.LicensePlate != "" {
		args = append(args, "%"+criteria.LicensePlate+"%")
		clauses = append(clauses, fmt.Sprintf("r.license_plate ILIKE $%d", len(args)))
	}
	if criteria.Status != nil {
		args = append(args, string(*criteria.Status))
		clauses = append(clauses, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if criteria.WaypointName != "" {
		args = append(args, "%"+criteria.WaypointName+"%")
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM route_waypoints w WHERE w.route_id = r.id AND w.name ILIKE $%d)", len(args)))
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

	countQuery := `SELECT COUNT(*) FROM routes r ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT%sFROM routes r %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		routeColumns, where, len(args)+1, len(args)+2,
	)
	pagedArgs := append(append([]interface{}{}, args...), pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, pagedArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		var rt Route
		err := rows.Scan(
			&rt.ID,
			&rt.UserID,
			&rt.VehicleID,
			&rt.LicensePlate,
			&rt.DistanceKm,
			&rt.EstimatedTimeSec,
			&rt.Status,
			&rt.StartTime,
			&rt.EndTime,
			&rt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		routes = append(routes, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rt := range routes {
		if err := r.loadWaypoints(ctx, rt); err != nil {
			return nil, err
		}
	}

	return &ListResult{Items: routes, TotalItems: total}, nil
}

func (r *PostgresRepository) loadWaypoints(ctx context.Context, rt *Route) error {
	query := `
		SELECT name, latitude, longitude, sequence
		FROM route_waypoints
		WHERE route_id = $1
		ORDER BY sequence ASC
	`

	rows, err := r.pool.Query(ctx, query, rt.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w Waypoint
		if err := rows.Scan(&w.Name, &w.Latitude, &w.Longitude, &w.Sequence); err != nil {
			return err
		}
		rt.Waypoints = append(rt.Waypoints, w)
	}
	return rows.Err()
}

// Create creates a new route with its waypoints in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, rt *Route) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO routes (
			id, user_id, vehicle_id, license_plate, distance_km,
			estimated_time_sec, status, start_time, end_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		rt.ID,
		rt.UserID,
		rt.VehicleID,
		rt.LicensePlate,
		rt.DistanceKm,
		rt.EstimatedTimeSec,
		rt.Status,
		rt.StartTime,
		rt.EndTime,
		rt.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, w := range rt.Waypoints {
		_, err = tx.Exec(ctx,
			`INSERT INTO route_waypoints (route_id, name, latitude, longitude, sequence)
			 VALUES ($1, $2, $3, $4, $5)`,
			rt.ID, w.Name, w.Latitude, w.Longitude, w.Sequence,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Update updates a route's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, rt *Route) error {
	query := `
		UPDATE routes SET
			status = $2,
			start_time = $3,
			end_time = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, rt.ID, rt.Status, rt.StartTime, rt.EndTime)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// Delete deletes a route and its waypoints.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM route_waypoints WHERE route_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
