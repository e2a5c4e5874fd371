package vehicle

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*Vehicle
}

// NewInMemoryRepository creates a new in-memory vehicle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		vehicles: make(map[string]*Vehicle),
	}
}

// Get retrieves a vehicle by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}

	cpy := *v
	return &cpy, nil
}

// GetByPlate retrieves a vehicle by license plate.
func (r *InMemoryRepository) GetByPlate(_ context.Context, licensePlate string) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vehicles {
		if v.LicensePlate == licensePlate {
			cpy := *v
			return &cpy, nil
		}
	}
	return nil, ErrVehicleNotFound
}

// List retrieves vehicles ordered by creation time, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.collect(nil), opts), nil
}

// Search retrieves vehicles matching the criteria, paginated.
func (r *InMemoryRepository) Search(_ context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := func(v *Vehicle) bool {
		if criteria.LicensePlate != "" && !containsFold(v.LicensePlate, criteria.LicensePlate) {
			return false
		}
		if criteria.Model != "" && !containsFold(v.Model, criteria.Model) {
			return false
		}
		if criteria.Manufacturer != "" && !containsFold(v.Manufacturer, criteria.Manufacturer) {
			return false
		}
		return true
	}

	return paginate(r.collect(matches), opts), nil
}

func (r *InMemoryRepository) collect(matches func(*Vehicle) bool) []*Vehicle {
	var vehicles []*Vehicle
	for _, v := range r.vehicles {
		if matches != nil && !matches(v) {
			continue
		}
		cpy := *v
		vehicles = append(vehicles, &cpy)
	}

	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
	})
	return vehicles
}

func paginate(vehicles []*Vehicle, opts ListOptions) *ListResult {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(vehicles)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &ListResult{Items: vehicles[start:end], TotalItems: total}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Create creates a new vehicle.
func (r *InMemoryRepository) Create(_ context.Context, v *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.vehicles {
		if existing.LicensePlate == v.LicensePlate {
			return ErrDuplicatePlate
		}
	}

	cpy := *v
	r.vehicles[v.ID] = &cpy
	return nil
}

// Update updates an existing vehicle.
func (r *InMemoryRepository) Update(_ context.Context, v *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[v.ID]; !ok {
		return ErrVehicleNotFound
	}

	cpy := *v
	r.vehicles[v.ID] = &cpy
	return nil
}

// Delete deletes a vehicle by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.vehicles, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
