package vehicle

import "context"

// DefaultPageSize is the fixed page size for vehicle listings.
const DefaultPageSize = 10

// ListOptions contains options for listing vehicles.
type ListOptions struct {
	// Page is 1-based. Values below 1 are treated as 1.
	Page     int
	PageSize int
}

// ListResult contains one page of vehicles plus the total count.
type ListResult struct {
	Items      []*Vehicle
	TotalItems int
}

// Repository defines the interface for vehicle data persistence.
type Repository interface {
	// Get retrieves a vehicle by ID.
	Get(ctx context.Context, id string) (*Vehicle, error)

	// GetByPlate retrieves a vehicle by license plate.
	// Returns ErrVehicleNotFound if no vehicle carries the plate.
	GetByPlate(ctx context.Context, licensePlate string) (*Vehicle, error)

	// List retrieves vehicles ordered by creation time, newest first.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Search retrieves vehicles matching the criteria, paginated.
	Search(ctx context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error)

	// Create creates a new vehicle. Returns ErrDuplicatePlate when the
	// license plate is already registered.
	Create(ctx context.Context, vehicle *Vehicle) error

	// Update updates an existing vehicle.
	Update(ctx context.Context, vehicle *Vehicle) error

	// Delete deletes a vehicle by ID.
	Delete(ctx context.Context, id string) error
}
