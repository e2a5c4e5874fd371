// Package routing provides road-route computation across ordered waypoints.
package routing

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists through the given waypoints.
	ErrNoRouteFound = errors.New("no route found through the given waypoints")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrTooFewWaypoints indicates fewer than two waypoints were supplied.
	ErrTooFewWaypoints = errors.New("at least two waypoints are required")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetDirections computes a route visiting the request waypoints in order.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// RouteProfile represents a routing profile (mode of transport).
type RouteProfile string

const (
	// ProfileDriving is the default profile for fleet vehicles.
	ProfileDriving RouteProfile = "driving"
	// ProfileCycling is the bike routing profile.
	ProfileCycling RouteProfile = "cycling"
	// ProfileWalking is the pedestrian routing profile.
	ProfileWalking RouteProfile = "walking"
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within geographic range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DirectionsRequest is the request for computing a route.
type DirectionsRequest struct {
	// Waypoints are visited in order. At least two are required.
	Waypoints []Coordinate
	Profile   RouteProfile
}

// DirectionsResponse is the computed route.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route option.
type Route struct {
	GeometryPolyline string  // Encoded polyline (precision 5)
	DistanceMeters   float64 // Total distance in meters
	DurationSeconds  float64 // Total duration in seconds
	Geometry         []Coordinate
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
