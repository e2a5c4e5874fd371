package vehicle_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

func newService() (*vehicle.Service, *vehicle.InMemoryRepository) {
	repo := vehicle.NewInMemoryRepository()
	return vehicle.NewService(repo, nil), repo
}

func createVehicle(t *testing.T, svc *vehicle.Service, plate string) *models.Vehicle {
	t.Helper()

	v, err := svc.Create(context.Background(), "user123", &models.VehicleCreateRequest{
		LicensePlate:   plate,
		Model:          "Sprinter",
		Manufacturer:   "Mercedes-Benz",
		ProductionYear: 2021,
		FuelCapacity:   75,
		Mileage:        12000,
	})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	return v
}

func TestService_Create(t *testing.T) {
	svc, _ := newService()

	v := createVehicle(t, svc, "WX 12345")

	if v.ID == "" {
		t.Error("expected vehicle ID to be set")
	}
	if !strings.HasPrefix(v.ID, "veh_") {
		t.Errorf("expected vehicle ID to start with 'veh_', got %q", v.ID)
	}
	if v.AverageConsumption != 0 {
		t.Errorf("expected zero initial average consumption, got %f", v.AverageConsumption)
	}
	if v.RouteRecords != 0 {
		t.Errorf("expected zero initial route records, got %d", v.RouteRecords)
	}
}

func TestService_Create_DuplicatePlate(t *testing.T) {
	svc, _ := newService()
	createVehicle(t, svc, "WX 12345")

	_, err := svc.Create(context.Background(), "user123", &models.VehicleCreateRequest{
		LicensePlate:   "WX 12345",
		Model:          "Transit",
		Manufacturer:   "Ford",
		ProductionYear: 2019,
		FuelCapacity:   80,
	})
	if !errors.Is(err, vehicle.ErrDuplicatePlate) {
		t.Fatalf("expected ErrDuplicatePlate, got %v", err)
	}
}

func TestService_GetByPlate_NotFound(t *testing.T) {
	svc, _ := newService()

	_, err := svc.GetByPlate(context.Background(), "missing")
	if !errors.Is(err, vehicle.ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestService_RecordRouteResult(t *testing.T) {
	svc, _ := newService()
	createVehicle(t, svc, "WX 12345")
	ctx := context.Background()

	// First trip: 8 litres over 100 km is 8.0 l/100km.
	v, err := svc.RecordRouteResult(ctx, "WX 12345", 100, 8)
	if err != nil {
		t.Fatalf("failed to record route result: %v", err)
	}
	if v.AverageConsumption != 8.0 {
		t.Errorf("expected average 8.0 after first trip, got %f", v.AverageConsumption)
	}
	if v.RouteRecords != 1 {
		t.Errorf("expected 1 route record, got %d", v.RouteRecords)
	}
	if v.Mileage != 12100 {
		t.Errorf("expected mileage 12100, got %f", v.Mileage)
	}

	// Second trip: 20 litres over 200 km is 10.0 l/100km; running
	// average becomes (8.0*1 + 10.0) / 2 = 9.0.
	v, err = svc.RecordRouteResult(ctx, "WX 12345", 200, 20)
	if err != nil {
		t.Fatalf("failed to record second route result: %v", err)
	}
	if v.AverageConsumption != 9.0 {
		t.Errorf("expected average 9.0 after second trip, got %f", v.AverageConsumption)
	}
	if v.RouteRecords != 2 {
		t.Errorf("expected 2 route records, got %d", v.RouteRecords)
	}
	if v.Mileage != 12300 {
		t.Errorf("expected mileage 12300, got %f", v.Mileage)
	}
}

func TestService_RecordRouteResult_InvalidInput(t *testing.T) {
	svc, _ := newService()
	createVehicle(t, svc, "WX 12345")

	tests := []struct {
		name     string
		distance float64
		fuel     float64
	}{
		{"zero distance", 0, 8},
		{"negative distance", -10, 8},
		{"zero fuel", 100, 0},
		{"negative fuel", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordRouteResult(context.Background(), "WX 12345", tt.distance, tt.fuel)
			if !errors.Is(err, vehicle.ErrInvalidRouteResult) {
				t.Errorf("expected ErrInvalidRouteResult, got %v", err)
			}
		})
	}
}

func TestService_Search(t *testing.T) {
	svc, _ := newService()
	createVehicle(t, svc, "WX 12345")
	createVehicle(t, svc, "KR 99999")

	result, err := svc.Search(context.Background(), vehicle.SearchCriteria{LicensePlate: "wx"}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Items))
	}
	if result.Items[0].LicensePlate != "WX 12345" {
		t.Errorf("unexpected match: %q", result.Items[0].LicensePlate)
	}
}

func TestService_List_Pagination(t *testing.T) {
	svc, _ := newService()
	plates := []string{
		"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10", "A11", "A12",
	}
	for _, plate := range plates {
		createVehicle(t, svc, plate)
	}

	page1, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1.Items) != 10 {
		t.Errorf("expected 10 items on page 1, got %d", len(page1.Items))
	}
	if page1.Meta.TotalItems != 12 {
		t.Errorf("expected 12 total items, got %d", page1.Meta.TotalItems)
	}
	if page1.Meta.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", page1.Meta.TotalPages)
	}

	page2, err := svc.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Errorf("expected 2 items on page 2, got %d", len(page2.Items))
	}
}

func TestService_DeleteByPlate(t *testing.T) {
	svc, _ := newService()
	createVehicle(t, svc, "WX 12345")
	ctx := context.Background()

	if err := svc.DeleteByPlate(ctx, "user123", "WX 12345"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := svc.GetByPlate(ctx, "WX 12345")
	if !errors.Is(err, vehicle.ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound after delete, got %v", err)
	}
}
