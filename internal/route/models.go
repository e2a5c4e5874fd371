// Package route provides route record management services.
package route

import (
	"errors"
	"time"
)

// Repository and service errors.
var (
	ErrRouteNotFound     = errors.New("route not found")
	ErrInvalidTransition = errors.New("invalid route status transition")
	ErrMissingFuelReport = errors.New("finishing a route requires a fuel report")
)

// Status is the lifecycle state of a route.
type Status string

const (
	StatusPlanned  Status = "PLANNED"
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// Waypoint is a named stop on a route. Sequence is 1-based.
type Waypoint struct {
	Name      string
	Latitude  float64
	Longitude float64
	Sequence  int
}

// Route represents a planned or driven route bound to a vehicle.
type Route struct {
	ID               string
	UserID           string
	VehicleID        string
	LicensePlate     string
	DistanceKm       float64
	EstimatedTimeSec int
	Status           Status
	StartTime        *time.Time
	EndTime          *time.Time
	CreatedAt        time.Time
	Waypoints        []Waypoint
}

// Origin returns the name of the first waypoint, or "" when unset.
func (r *Route) Origin() string {
	if len(r.Waypoints) == 0 {
		return ""
	}
	return r.Waypoints[0].Name
}

// Destination returns the name of the last waypoint, or "" when unset.
func (r *Route) Destination() string {
	if len(r.Waypoints) == 0 {
		return ""
	}
	return r.Waypoints[len(r.Waypoints)-1].Name
}

// SearchCriteria filters routes.
type SearchCriteria struct {
	LicensePlate string
	Status       *Status
	WaypointName string
}
