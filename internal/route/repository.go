package route

import "context"

// DefaultPageSize is the fixed page size for route listings.
const DefaultPageSize = 10

// ListOptions contains options for listing routes.
type ListOptions struct {
	// Page is 1-based. Values below 1 are treated as 1.
	Page     int
	PageSize int
}

// ListResult contains one page of routes plus the total count.
type ListResult struct {
	Items      []*Route
	TotalItems int
}

// Repository defines the interface for route data persistence.
type Repository interface {
	// Get retrieves a route by ID.
	Get(ctx context.Context, id string) (*Route, error)

	// ListByVehicle retrieves a vehicle's routes, newest first.
	ListByVehicle(ctx context.Context, vehicleID string, opts ListOptions) (*ListResult, error)

	// Search retrieves routes matching the criteria, paginated.
	Search(ctx context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error)

	// Create creates a new route with its waypoints.
	Create(ctx context.Context, route *Route) error

	// Update updates a route's mutable fields (status, start/end times).
	Update(ctx context.Context, route *Route) error

	// Delete deletes a route and its waypoints.
	Delete(ctx context.Context, id string) error
}
