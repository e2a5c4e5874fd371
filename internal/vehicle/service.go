package vehicle

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/events"
)

// Service errors.
var (
	ErrInvalidRouteResult = errors.New("distance and fuel consumed must be positive")
)

// Service provides vehicle operations.
type Service struct {
	repo      Repository
	publisher events.Publisher
}

// NewService creates a new vehicle service.
func NewService(repo Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher}
}

// List retrieves one page of vehicles.
func (s *Service) List(ctx context.Context, page int) (*models.PagedVehicles, error) {
	result, err := s.repo.List(ctx, ListOptions{Page: page, PageSize: DefaultPageSize})
	if err != nil {
		return nil, err
	}
	return s.toPagedVehicles(result, page), nil
}

// Search retrieves vehicles matching the criteria. Empty criteria behave
// like a plain listing.
func (s *Service) Search(ctx context.Context, criteria SearchCriteria, page int) (*models.PagedVehicles, error) {
	result, err := s.repo.Search(ctx, criteria, ListOptions{Page: page, PageSize: DefaultPageSize})
	if err != nil {
		return nil, err
	}
	return s.toPagedVehicles(result, page), nil
}

// GetByPlate retrieves a vehicle by license plate.
func (s *Service) GetByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error) {
	v, err := s.repo.GetByPlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	result := s.toAPIVehicle(v)
	return &result, nil
}

// Create registers a new vehicle and publishes a vehicle-created event.
// A fresh vehicle starts with zero consumption history.
func (s *Service) Create(ctx context.Context, userID string, input *models.VehicleCreateRequest) (*models.Vehicle, error) {
	now := time.Now()
	v := &Vehicle{
		ID:                 "veh_" + uuid.New().String()[:22],
		UserID:             userID,
		LicensePlate:       input.LicensePlate,
		Model:              input.Model,
		Manufacturer:       input.Manufacturer,
		ProductionYear:     input.ProductionYear,
		FuelCapacity:       input.FuelCapacity,
		AverageConsumption: 0,
		Mileage:            input.Mileage,
		RouteRecords:       0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	event := events.NewEvent(events.TypeVehicleCreated, userID)
	event.Vehicle = &events.VehiclePayload{
		VehicleID:    v.ID,
		LicensePlate: v.LicensePlate,
		Model:        v.Model,
		Manufacturer: v.Manufacturer,
	}
	_ = s.publisher.Publish(ctx, event)

	result := s.toAPIVehicle(v)
	return &result, nil
}

// DeleteByPlate removes a vehicle and publishes a vehicle-deleted event.
func (s *Service) DeleteByPlate(ctx context.Context, userID, licensePlate string) error {
	v, err := s.repo.GetByPlate(ctx, licensePlate)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, v.ID); err != nil {
		return err
	}

	event := events.NewEvent(events.TypeVehicleDeleted, userID)
	event.Vehicle = &events.VehiclePayload{
		VehicleID:    v.ID,
		LicensePlate: v.LicensePlate,
		Model:        v.Model,
		Manufacturer: v.Manufacturer,
	}
	_ = s.publisher.Publish(ctx, event)

	return nil
}

// RecordRouteResult folds a finished trip into the vehicle's running
// consumption average and mileage. The trip's consumption is normalized to
// litres per 100 km before averaging.
func (s *Service) RecordRouteResult(ctx context.Context, licensePlate string, distanceKm, fuelConsumed float64) (*models.Vehicle, error) {
	if distanceKm <= 0 || fuelConsumed <= 0 {
		return nil, ErrInvalidRouteResult
	}

	v, err := s.repo.GetByPlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	perHundred := fuelConsumed / (distanceKm / 100)
	records := float64(v.RouteRecords)
	newAvg := (v.AverageConsumption*records + perHundred) / (records + 1)

	v.AverageConsumption = round2(newAvg)
	v.RouteRecords++
	v.Mileage += distanceKm
	v.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	result := s.toAPIVehicle(v)
	return &result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) toPagedVehicles(result *ListResult, page int) *models.PagedVehicles {
	if page < 1 {
		page = 1
	}

	items := make([]models.Vehicle, 0, len(result.Items))
	for _, v := range result.Items {
		items = append(items, s.toAPIVehicle(v))
	}

	totalPages := (result.TotalItems + DefaultPageSize - 1) / DefaultPageSize

	return &models.PagedVehicles{
		Items: items,
		Meta: models.PagedResponseMeta{
			Page:       page,
			PageSize:   DefaultPageSize,
			TotalItems: result.TotalItems,
			TotalPages: totalPages,
		},
	}
}

// toAPIVehicle converts a domain Vehicle to an API Vehicle.
func (s *Service) toAPIVehicle(v *Vehicle) models.Vehicle {
	var lastMaintenance *models.Timestamp
	if v.LastMaintenance != nil {
		ts := models.Timestamp(*v.LastMaintenance)
		lastMaintenance = &ts
	}

	return models.Vehicle{
		ID:                 v.ID,
		LicensePlate:       v.LicensePlate,
		Model:              v.Model,
		Manufacturer:       v.Manufacturer,
		ProductionYear:     v.ProductionYear,
		FuelCapacity:       v.FuelCapacity,
		AverageConsumption: v.AverageConsumption,
		Mileage:            v.Mileage,
		RouteRecords:       v.RouteRecords,
		LastMaintenance:    lastMaintenance,
		CreatedAt:          models.Timestamp(v.CreatedAt),
	}
}
