package fuel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
)

// Service errors.
var (
	ErrInvalidAmount = errors.New("fuel consumed must be positive")
)

// Service provides fuel history operations.
type Service struct {
	repo Repository
}

// NewService creates a new fuel service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a fuel entry for a vehicle. RouteID is nil for entries
// reported directly rather than by route completion.
func (s *Service) Record(ctx context.Context, vehicleID string, routeID *string, fuelConsumed float64) (*models.FuelEntry, error) {
	if fuelConsumed <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := &Entry{
		ID:           "ful_" + uuid.New().String()[:22],
		VehicleID:    vehicleID,
		RouteID:      routeID,
		FuelConsumed: fuelConsumed,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Add(ctx, entry); err != nil {
		return nil, err
	}

	result := s.toAPIEntry(entry)
	return &result, nil
}

// ListByVehicle retrieves one page of a vehicle's fuel history.
func (s *Service) ListByVehicle(ctx context.Context, vehicleID string, page int) (*models.PagedFuelEntries, error) {
	if page < 1 {
		page = 1
	}

	result, err := s.repo.ListByVehicle(ctx, vehicleID, ListOptions{Page: page, PageSize: DefaultPageSize})
	if err != nil {
		return nil, err
	}

	items := make([]models.FuelEntry, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, s.toAPIEntry(e))
	}

	totalPages := (result.TotalItems + DefaultPageSize - 1) / DefaultPageSize

	return &models.PagedFuelEntries{
		Items: items,
		Meta: models.PagedResponseMeta{
			Page:       page,
			PageSize:   DefaultPageSize,
			TotalItems: result.TotalItems,
			TotalPages: totalPages,
		},
	}, nil
}

// toAPIEntry converts a domain Entry to an API FuelEntry.
func (s *Service) toAPIEntry(e *Entry) models.FuelEntry {
	return models.FuelEntry{
		ID:           e.ID,
		VehicleID:    e.VehicleID,
		RouteID:      e.RouteID,
		FuelConsumed: e.FuelConsumed,
		CreatedAt:    models.Timestamp(e.CreatedAt),
	}
}
