package route

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/events"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// Service provides route operations. Completing a route feeds the vehicle's
// running consumption average and the fuel history.
type Service struct {
	repo      Repository
	vehicles  *vehicle.Service
	fuel      *fuel.Service
	publisher events.Publisher
}

// NewService creates a new route service.
func NewService(repo Repository, vehicles *vehicle.Service, fuelSvc *fuel.Service, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		vehicles:  vehicles,
		fuel:      fuelSvc,
		publisher: publisher,
	}
}

// Get retrieves a route by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Route, error) {
	rt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.toAPIRoute(rt)
	return &result, nil
}

// ListByPlate retrieves one page of a vehicle's routes.
func (s *Service) ListByPlate(ctx context.Context, licensePlate string, page int) (*models.PagedRoutes, error) {
	v, err := s.vehicles.GetByPlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.ListByVehicle(ctx, v.ID, ListOptions{Page: page, PageSize: DefaultPageSize})
	if err != nil {
		return nil, err
	}
	return s.toPagedRoutes(result, page), nil
}

// Search retrieves routes matching the criteria.
func (s *Service) Search(ctx context.Context, criteria SearchCriteria, page int) (*models.PagedRoutes, error) {
	result, err := s.repo.Search(ctx, criteria, ListOptions{Page: page, PageSize: DefaultPageSize})
	if err != nil {
		return nil, err
	}
	return s.toPagedRoutes(result, page), nil
}

// Create saves a planned route. New routes always start in PLANNED
// regardless of input, and waypoint sequences are normalized to 1..n in
// the order given.
func (s *Service) Create(ctx context.Context, userID string, input *models.RouteCreateRequest) (*models.Route, error) {
	v, err := s.vehicles.GetByPlate(ctx, input.LicensePlate)
	if err != nil {
		return nil, err
	}

	waypoints := make([]Waypoint, 0, len(input.Waypoints))
	for i, w := range input.Waypoints {
		waypoints = append(waypoints, Waypoint{
			Name:      w.Name,
			Latitude:  w.Latitude,
			Longitude: w.Longitude,
			Sequence:  i + 1,
		})
	}

	rt := &Route{
		ID:               "rt_" + uuid.New().String()[:22],
		UserID:           userID,
		VehicleID:        v.ID,
		LicensePlate:     v.LicensePlate,
		DistanceKm:       input.DistanceKm,
		EstimatedTimeSec: input.EstimatedTimeSec,
		Status:           StatusPlanned,
		CreatedAt:        time.Now(),
		Waypoints:        waypoints,
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}

	s.publishRouteEvent(ctx, events.TypeRouteCreated, userID, rt)

	result := s.toAPIRoute(rt)
	return &result, nil
}

// UpdateStatus advances a route through PLANNED -> ACTIVE -> FINISHED.
// Activating stamps the start time. Finishing stamps the end time, records
// the reported fuel consumption (direct litres, or tank level difference)
// against the vehicle, and writes a fuel history entry.
func (s *Service) UpdateStatus(ctx context.Context, userID string, input *models.RouteStatusUpdateRequest) (*models.Route, error) {
	rt, err := s.repo.Get(ctx, input.RouteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	target := Status(input.Status)

	switch {
	case rt.Status == StatusPlanned && target == StatusActive:
		rt.Status = StatusActive
		rt.StartTime = &now

		if err := s.repo.Update(ctx, rt); err != nil {
			return nil, err
		}

	case rt.Status == StatusActive && target == StatusFinished:
		consumed, ok := fuelConsumed(input)
		if !ok {
			return nil, ErrMissingFuelReport
		}

		rt.Status = StatusFinished
		rt.EndTime = &now

		// The transition must be durable before the consumption is
		// counted anywhere: a failed update followed by a retry would
		// otherwise push the same litres into the vehicle average and
		// fuel history twice.
		if err := s.repo.Update(ctx, rt); err != nil {
			return nil, err
		}

		if _, err := s.vehicles.RecordRouteResult(ctx, rt.LicensePlate, rt.DistanceKm, consumed); err != nil {
			return nil, err
		}
		if _, err := s.fuel.Record(ctx, rt.VehicleID, &rt.ID, consumed); err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidTransition
	}

	eventType := events.TypeRouteUpdated
	if rt.Status == StatusFinished {
		eventType = events.TypeRouteCompleted
	}
	s.publishRouteEvent(ctx, eventType, userID, rt)

	result := s.toAPIRoute(rt)
	return &result, nil
}

// Delete removes a route.
func (s *Service) Delete(ctx context.Context, userID, routeID string) error {
	rt, err := s.repo.Get(ctx, routeID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, routeID); err != nil {
		return err
	}

	s.publishRouteEvent(ctx, events.TypeRouteDeleted, userID, rt)
	return nil
}

// fuelConsumed extracts the fuel report from a finish request. Direct
// litres win over tank levels when both are present.
func fuelConsumed(input *models.RouteStatusUpdateRequest) (float64, bool) {
	if input.FuelConsumed != nil && *input.FuelConsumed > 0 {
		return *input.FuelConsumed, true
	}
	if input.TankBefore != nil && input.TankAfter != nil {
		diff := *input.TankBefore - *input.TankAfter
		if diff > 0 {
			return diff, true
		}
	}
	return 0, false
}

func (s *Service) publishRouteEvent(ctx context.Context, eventType events.Type, userID string, rt *Route) {
	event := events.NewEvent(eventType, userID)
	event.Route = &events.RoutePayload{
		RouteID:      rt.ID,
		LicensePlate: rt.LicensePlate,
		Origin:       rt.Origin(),
		Destination:  rt.Destination(),
		DistanceKm:   rt.DistanceKm,
		Status:       string(rt.Status),
	}
	_ = s.publisher.Publish(ctx, event)
}

func (s *Service) toPagedRoutes(result *ListResult, page int) *models.PagedRoutes {
	if page < 1 {
		page = 1
	}

	items := make([]models.Route, 0, len(result.Items))
	for _, rt := range result.Items {
		items = append(items, s.toAPIRoute(rt))
	}

	totalPages := (result.TotalItems + DefaultPageSize - 1) / DefaultPageSize

	return &models.PagedRoutes{
		Items: items,
		Meta: models.PagedResponseMeta{
			Page:       page,
			PageSize:   DefaultPageSize,
			TotalItems: result.TotalItems,
			TotalPages: totalPages,
		},
	}
}

// toAPIRoute converts a domain Route to an API Route.
func (s *Service) toAPIRoute(rt *Route) models.Route {
	var startTime, endTime *models.Timestamp
	if rt.StartTime != nil {
		ts := models.Timestamp(*rt.StartTime)
		startTime = &ts
	}
	if rt.EndTime != nil {
		ts := models.Timestamp(*rt.EndTime)
		endTime = &ts
	}

	waypoints := make([]models.Waypoint, 0, len(rt.Waypoints))
	for _, w := range rt.Waypoints {
		waypoints = append(waypoints, models.Waypoint{
			Name:      w.Name,
			Latitude:  w.Latitude,
			Longitude: w.Longitude,
			Sequence:  w.Sequence,
		})
	}

	return models.Route{
		ID:               rt.ID,
		VehicleID:        rt.VehicleID,
		LicensePlate:     rt.LicensePlate,
		DistanceKm:       rt.DistanceKm,
		EstimatedTimeSec: rt.EstimatedTimeSec,
		Status:           models.RouteStatus(rt.Status),
		StartTime:        startTime,
		EndTime:          endTime,
		CreatedAt:        models.Timestamp(rt.CreatedAt),
		Waypoints:        waypoints,
	}
}
