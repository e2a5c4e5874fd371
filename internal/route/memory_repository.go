package route

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	routes map[string]*Route
}

// NewInMemoryRepository creates a new in-memory route repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		routes: make(map[string]*Route),
	}
}

// Get retrieves a route by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}

	cpy := copyRoute(rt)
	return cpy, nil
}

// ListByVehicle retrieves a vehicle's routes, newest first.
func (r *InMemoryRepository) ListByVehicle(_ context.Context, vehicleID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.collect(func(rt *Route) bool {
		return rt.VehicleID == vehicleID
	}), opts), nil
}

// Search retrieves routes matching the criteria, paginated.
func (r *InMemoryRepository) Search(_ context.Context, criteria SearchCriteria, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.collect(func(rt *Route) bool {
		if criteria.LicensePlate != "" &&
			!strings.Contains(strings.ToLower(rt.LicensePlate), strings.ToLower(criteria.LicensePlate)) {
			return false
		}
		if criteria.Status != nil && rt.Status != *criteria.Status {
			return false
		}
		if criteria.WaypointName != "" {
			found := false
			for _, w := range rt.Waypoints {
				if strings.Contains(strings.ToLower(w.Name), strings.ToLower(criteria.WaypointName)) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}), opts), nil
}

func (r *InMemoryRepository) collect(matches func(*Route) bool) []*Route {
	var routes []*Route
	for _, rt := range r.routes {
		if matches != nil && !matches(rt) {
			continue
		}
		routes = append(routes, copyRoute(rt))
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].CreatedAt.After(routes[j].CreatedAt)
	})
	return routes
}

func paginate(routes []*Route, opts ListOptions) *ListResult {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(routes)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &ListResult{Items: routes[start:end], TotalItems: total}
}

// Create creates a new route.
func (r *InMemoryRepository) Create(_ context.Context, rt *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[rt.ID] = copyRoute(rt)
	return nil
}

// Update updates a route's mutable fields.
func (r *InMemoryRepository) Update(_ context.Context, rt *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[rt.ID]; !ok {
		return ErrRouteNotFound
	}

	r.routes[rt.ID] = copyRoute(rt)
	return nil
}

// Delete deletes a route.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.routes, id)
	return nil
}

func copyRoute(rt *Route) *Route {
	cpy := *rt
	cpy.Waypoints = make([]Waypoint, len(rt.Waypoints))
	copy(cpy.Waypoints, rt.Waypoints)
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
