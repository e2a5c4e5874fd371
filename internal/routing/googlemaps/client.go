// Package googlemaps provides a routing client backed by the Google Maps
// Directions API. It is an alternative to the default OSRM provider for
// deployments that already hold a Maps API key.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"github.com/fleetdispatch/fleetdispatch/internal/routing"
	"github.com/fleetdispatch/fleetdispatch/pkg/polyline"
)

// ProviderName identifies this routing provider.
const ProviderName = "googlemaps"

// directionsAPI is the subset of the maps client used here.
type directionsAPI interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// ClientConfig holds configuration for the Google Maps routing client.
type ClientConfig struct {
	// APIKey is the Maps API key (required).
	APIKey string

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Maps Directions API routing provider.
type Client struct {
	api    directionsAPI
	logger zerolog.Logger
}

// NewClient creates a new Google Maps routing client.
func NewClient(cfg ClientConfig) (*Client, error) {
	api, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Client{api: api, logger: cfg.Logger}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections computes a route visiting the request waypoints in order.
// Intermediate waypoints are passed through as via points.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if len(req.Waypoints) < 2 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "TOO_FEW_WAYPOINTS",
			Message:  "a route needs at least two waypoints",
			Err:      routing.ErrTooFewWaypoints,
		}
	}

	origin := req.Waypoints[0]
	destination := req.Waypoints[len(req.Waypoints)-1]

	mapsReq := &maps.DirectionsRequest{
		Origin:      coordString(origin),
		Destination: coordString(destination),
		Mode:        travelMode(req.Profile),
		Units:       maps.UnitsMetric,
	}
	for _, wp := range req.Waypoints[1 : len(req.Waypoints)-1] {
		mapsReq.Waypoints = append(mapsReq.Waypoints, coordString(wp))
	}

	c.logger.Debug().
		Int("waypoint_count", len(req.Waypoints)).
		Str("profile", string(req.Profile)).
		Msg("requesting route from google maps")

	mapsRoutes, _, err := c.api.Directions(ctx, mapsReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      errors.Join(routing.ErrProviderUnavailable, err),
		}
	}
	if len(mapsRoutes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found through the given waypoints",
			Err:      routing.ErrNoRouteFound,
		}
	}

	routes := make([]routing.Route, 0, len(mapsRoutes))
	for i := range mapsRoutes {
		routes = append(routes, toRoute(&mapsRoutes[i]))
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}

func toRoute(mr *maps.Route) routing.Route {
	var distance, duration float64
	for _, leg := range mr.Legs {
		distance += float64(leg.Distance.Meters)
		duration += leg.Duration.Seconds()
	}

	route := routing.Route{
		GeometryPolyline: mr.OverviewPolyline.Points,
		DistanceMeters:   distance,
		DurationSeconds:  duration,
	}
	for _, c := range polyline.Decode(mr.OverviewPolyline.Points) {
		route.Geometry = append(route.Geometry, routing.Coordinate{Lat: c.Lat, Lon: c.Lon})
	}
	return route
}

func travelMode(profile routing.RouteProfile) maps.Mode {
	switch profile {
	case routing.ProfileCycling:
		return maps.TravelModeBicycling
	case routing.ProfileWalking:
		return maps.TravelModeWalking
	default:
		return maps.TravelModeDriving
	}
}

func coordString(c routing.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lon)
}
