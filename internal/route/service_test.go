package route_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

type fixture struct {
	routes   *route.Service
	vehicles *vehicle.Service
	fuel     *fuel.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vehicles := vehicle.NewService(vehicle.NewInMemoryRepository(), nil)
	fuelSvc := fuel.NewService(fuel.NewInMemoryRepository())
	routes := route.NewService(route.NewInMemoryRepository(), vehicles, fuelSvc, nil)

	_, err := vehicles.Create(context.Background(), "user123", &models.VehicleCreateRequest{
		LicensePlate:   "WX 12345",
		Model:          "Sprinter",
		Manufacturer:   "Mercedes-Benz",
		ProductionYear: 2021,
		FuelCapacity:   75,
		Mileage:        0,
	})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}

	return &fixture{routes: routes, vehicles: vehicles, fuel: fuelSvc}
}

func createRoute(t *testing.T, f *fixture) *models.Route {
	t.Helper()

	rt, err := f.routes.Create(context.Background(), "user123", &models.RouteCreateRequest{
		LicensePlate:     "WX 12345",
		DistanceKm:       128.40,
		EstimatedTimeSec: 5400,
		Waypoints: []models.Waypoint{
			{Name: "Warszawa, Poland", Latitude: 52.2, Longitude: 21.0, Sequence: 1},
			{Name: "Kraków, Poland", Latitude: 50.0, Longitude: 19.9, Sequence: 2},
		},
	})
	if err != nil {
		t.Fatalf("failed to create route: %v", err)
	}
	return rt
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	rt := createRoute(t, f)

	if !strings.HasPrefix(rt.ID, "rt_") {
		t.Errorf("expected route ID to start with 'rt_', got %q", rt.ID)
	}
	if rt.Status != models.RouteStatusPlanned {
		t.Errorf("expected new route status PLANNED, got %q", rt.Status)
	}
	if rt.StartTime != nil || rt.EndTime != nil {
		t.Error("expected no start/end time on a planned route")
	}
	if len(rt.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(rt.Waypoints))
	}
	if rt.Waypoints[0].Sequence != 1 || rt.Waypoints[1].Sequence != 2 {
		t.Errorf("expected 1-based sequences in order, got %d and %d",
			rt.Waypoints[0].Sequence, rt.Waypoints[1].Sequence)
	}
}

func TestService_Create_UnknownVehicle(t *testing.T) {
	f := newFixture(t)

	_, err := f.routes.Create(context.Background(), "user123", &models.RouteCreateRequest{
		LicensePlate:     "missing",
		DistanceKm:       10,
		EstimatedTimeSec: 600,
		Waypoints: []models.Waypoint{
			{Name: "A", Latitude: 1, Longitude: 1, Sequence: 1},
			{Name: "B", Latitude: 2, Longitude: 2, Sequence: 2},
		},
	})
	if !errors.Is(err, vehicle.ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestService_UpdateStatus_Lifecycle(t *testing.T) {
	f := newFixture(t)
	rt := createRoute(t, f)
	ctx := context.Background()

	active, err := f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID: rt.ID,
		Status:  models.RouteStatusActive,
	})
	if err != nil {
		t.Fatalf("failed to activate route: %v", err)
	}
	if active.Status != models.RouteStatusActive {
		t.Errorf("expected status ACTIVE, got %q", active.Status)
	}
	if active.StartTime == nil {
		t.Error("expected start time to be stamped on activation")
	}

	consumed := 12.84
	finished, err := f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID:      rt.ID,
		Status:       models.RouteStatusFinished,
		FuelConsumed: &consumed,
	})
	if err != nil {
		t.Fatalf("failed to finish route: %v", err)
	}
	if finished.Status != models.RouteStatusFinished {
		t.Errorf("expected status FINISHED, got %q", finished.Status)
	}
	if finished.EndTime == nil {
		t.Error("expected end time to be stamped on finish")
	}

	// 12.84 litres over 128.40 km normalizes to exactly 10 l/100km.
	v, err := f.vehicles.GetByPlate(ctx, "WX 12345")
	if err != nil {
		t.Fatalf("failed to fetch vehicle: %v", err)
	}
	if v.AverageConsumption != 10.0 {
		t.Errorf("expected average consumption 10.0, got %f", v.AverageConsumption)
	}
	if v.RouteRecords != 1 {
		t.Errorf("expected 1 route record, got %d", v.RouteRecords)
	}
	if v.Mileage != 128.40 {
		t.Errorf("expected mileage 128.40, got %f", v.Mileage)
	}

	entries, err := f.fuel.ListByVehicle(ctx, finished.VehicleID, 1)
	if err != nil {
		t.Fatalf("failed to list fuel entries: %v", err)
	}
	if len(entries.Items) != 1 {
		t.Fatalf("expected 1 fuel entry, got %d", len(entries.Items))
	}
	if entries.Items[0].FuelConsumed != 12.84 {
		t.Errorf("expected fuel entry of 12.84, got %f", entries.Items[0].FuelConsumed)
	}
	if entries.Items[0].RouteID == nil || *entries.Items[0].RouteID != rt.ID {
		t.Error("expected fuel entry to reference the finished route")
	}
}

// failingUpdateRepo wraps a repository and fails Update on demand.
type failingUpdateRepo struct {
	route.Repository
	updateErr error
}

func (r *failingUpdateRepo) Update(ctx context.Context, rt *route.Route) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.Repository.Update(ctx, rt)
}

func TestService_UpdateStatus_FailedFinishLeavesNoSideEffects(t *testing.T) {
	repo := &failingUpdateRepo{Repository: route.NewInMemoryRepository()}
	vehicles := vehicle.NewService(vehicle.NewInMemoryRepository(), nil)
	fuelSvc := fuel.NewService(fuel.NewInMemoryRepository())
	routes := route.NewService(repo, vehicles, fuelSvc, nil)
	ctx := context.Background()

	if _, err := vehicles.Create(ctx, "user123", &models.VehicleCreateRequest{
		LicensePlate: "WX 12345",
		Model:        "Sprinter",
		Manufacturer: "Mercedes-Benz",
		FuelCapacity: 75,
	}); err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}

	rt, err := routes.Create(ctx, "user123", &models.RouteCreateRequest{
		LicensePlate:     "WX 12345",
		DistanceKm:       128.40,
		EstimatedTimeSec: 5400,
		Waypoints: []models.Waypoint{
			{Name: "Warszawa, Poland", Latitude: 52.2, Longitude: 21.0, Sequence: 1},
			{Name: "Kraków, Poland", Latitude: 50.0, Longitude: 19.9, Sequence: 2},
		},
	})
	if err != nil {
		t.Fatalf("failed to create route: %v", err)
	}

	if _, err := routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID: rt.ID,
		Status:  models.RouteStatusActive,
	}); err != nil {
		t.Fatalf("failed to activate route: %v", err)
	}

	repo.updateErr = errors.New("connection reset")
	consumed := 12.84
	if _, err := routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID:      rt.ID,
		Status:       models.RouteStatusFinished,
		FuelConsumed: &consumed,
	}); err == nil {
		t.Fatal("expected finish to fail when the route update fails")
	}

	// Nothing may be counted while the route is still ACTIVE, or a
	// retry would record the same consumption twice.
	v, err := vehicles.GetByPlate(ctx, "WX 12345")
	if err != nil {
		t.Fatalf("failed to fetch vehicle: %v", err)
	}
	if v.AverageConsumption != 0 || v.RouteRecords != 0 || v.Mileage != 0 {
		t.Errorf("vehicle stats changed by failed finish: avg=%f records=%d mileage=%f",
			v.AverageConsumption, v.RouteRecords, v.Mileage)
	}
	entries, err := fuelSvc.ListByVehicle(ctx, v.ID, 1)
	if err != nil {
		t.Fatalf("failed to list fuel entries: %v", err)
	}
	if len(entries.Items) != 0 {
		t.Errorf("expected no fuel entries, got %d", len(entries.Items))
	}

	// The retry succeeds and counts the consumption exactly once.
	repo.updateErr = nil
	if _, err := routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID:      rt.ID,
		Status:       models.RouteStatusFinished,
		FuelConsumed: &consumed,
	}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	v, _ = vehicles.GetByPlate(ctx, "WX 12345")
	if v.RouteRecords != 1 {
		t.Errorf("expected exactly 1 route record after retry, got %d", v.RouteRecords)
	}
	entries, _ = fuelSvc.ListByVehicle(ctx, v.ID, 1)
	if len(entries.Items) != 1 {
		t.Errorf("expected exactly 1 fuel entry after retry, got %d", len(entries.Items))
	}
}

func TestService_UpdateStatus_TankDifference(t *testing.T) {
	f := newFixture(t)
	rt := createRoute(t, f)
	ctx := context.Background()

	_, err := f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID: rt.ID,
		Status:  models.RouteStatusActive,
	})
	if err != nil {
		t.Fatalf("failed to activate route: %v", err)
	}

	before, after := 60.0, 47.16
	_, err = f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID:    rt.ID,
		Status:     models.RouteStatusFinished,
		TankBefore: &before,
		TankAfter:  &after,
	})
	if err != nil {
		t.Fatalf("failed to finish route: %v", err)
	}

	entries, err := f.fuel.ListByVehicle(ctx, rt.VehicleID, 1)
	if err != nil {
		t.Fatalf("failed to list fuel entries: %v", err)
	}
	if len(entries.Items) != 1 {
		t.Fatalf("expected 1 fuel entry, got %d", len(entries.Items))
	}
	if got := entries.Items[0].FuelConsumed; got < 12.83 || got > 12.85 {
		t.Errorf("expected fuel entry near 12.84, got %f", got)
	}
}

func TestService_UpdateStatus_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	rt := createRoute(t, f)
	ctx := context.Background()

	tests := []struct {
		name   string
		status models.RouteStatus
	}{
		{"planned to finished", models.RouteStatusFinished},
		{"planned to planned", models.RouteStatusPlanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumed := 5.0
			_, err := f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
				RouteID:      rt.ID,
				Status:       tt.status,
				FuelConsumed: &consumed,
			})
			if !errors.Is(err, route.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestService_UpdateStatus_FinishRequiresFuel(t *testing.T) {
	f := newFixture(t)
	rt := createRoute(t, f)
	ctx := context.Background()

	_, err := f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID: rt.ID,
		Status:  models.RouteStatusActive,
	})
	if err != nil {
		t.Fatalf("failed to activate route: %v", err)
	}

	_, err = f.routes.UpdateStatus(ctx, "user123", &models.RouteStatusUpdateRequest{
		RouteID: rt.ID,
		Status:  models.RouteStatusFinished,
	})
	if !errors.Is(err, route.ErrMissingFuelReport) {
		t.Fatalf("expected ErrMissingFuelReport, got %v", err)
	}

	// The route must stay ACTIVE when the finish attempt fails.
	got, err := f.routes.Get(ctx, rt.ID)
	if err != nil {
		t.Fatalf("failed to fetch route: %v", err)
	}
	if got.Status != models.RouteStatusActive {
		t.Errorf("expected route to remain ACTIVE, got %q", got.Status)
	}
}

func TestService_ListByPlate(t *testing.T) {
	f := newFixture(t)
	createRoute(t, f)
	createRoute(t, f)

	page, err := f.routes.ListByPlate(context.Background(), "WX 12345", 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 routes, got %d", len(page.Items))
	}
}

func TestService_Search_ByWaypointName(t *testing.T) {
	f := newFixture(t)
	createRoute(t, f)

	page, err := f.routes.Search(context.Background(), route.SearchCriteria{WaypointName: "kraków"}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(page.Items))
	}

	page, err = f.routes.Search(context.Background(), route.SearchCriteria{WaypointName: "gdańsk"}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected no matches, got %d", len(page.Items))
	}
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	rt := createRoute(t, f)
	ctx := context.Background()

	if err := f.routes.Delete(ctx, "user123", rt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := f.routes.Get(ctx, rt.ID)
	if !errors.Is(err, route.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound after delete, got %v", err)
	}
}
