// Package events defines the fleet domain events and the publishers that
// carry them to the notification pipeline.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of domain event.
type Type string

const (
	TypeVehicleCreated Type = "vehicle.created"
	TypeVehicleDeleted Type = "vehicle.deleted"
	TypeRouteCreated   Type = "route.created"
	TypeRouteUpdated   Type = "route.updated"
	TypeRouteCompleted Type = "route.completed"
	TypeRouteDeleted   Type = "route.deleted"
)

// VehiclePayload carries the vehicle fields notification consumers need.
type VehiclePayload struct {
	VehicleID    string `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
}

// RoutePayload carries the route fields notification consumers need.
type RoutePayload struct {
	RouteID      string  `json:"route_id"`
	LicensePlate string  `json:"license_plate"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	DistanceKm   float64 `json:"distance_km"`
	Status       string  `json:"status"`
}

// Event is a single domain event. Exactly one payload field is set,
// matching the event type.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Vehicle    *VehiclePayload `json:"vehicle,omitempty"`
	Route      *RoutePayload   `json:"route,omitempty"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(eventType Type, userID string) Event {
	return Event{
		ID:         "evt_" + uuid.New().String()[:22],
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
}
