package fuel

import "context"

// DefaultPageSize is the fixed page size for fuel history listings.
const DefaultPageSize = 10

// ListOptions contains options for listing fuel entries.
type ListOptions struct {
	// Page is 1-based. Values below 1 are treated as 1.
	Page     int
	PageSize int
}

// ListResult contains one page of fuel entries plus the total count.
type ListResult struct {
	Items      []*Entry
	TotalItems int
}

// Repository defines the interface for fuel history persistence.
type Repository interface {
	// Add appends a fuel entry.
	Add(ctx context.Context, entry *Entry) error

	// ListByVehicle retrieves a vehicle's fuel entries, newest first.
	ListByVehicle(ctx context.Context, vehicleID string, opts ListOptions) (*ListResult, error)
}
