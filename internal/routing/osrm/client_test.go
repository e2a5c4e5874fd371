package osrm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdispatch/fleetdispatch/internal/routing"
	"github.com/fleetdispatch/fleetdispatch/internal/routing/osrm"
)

func TestClient_GetDirections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "polyline", r.URL.Query().Get("geometries"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{"distance": 128400.0, "duration": 5400.0, "geometry": "_p~iF~ps|U_ulLnnqC"}]
		}`))
	}))
	defer server.Close()

	client := osrm.NewClient(osrm.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	resp, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{
			{Lat: 52.2, Lon: 21.0},
			{Lat: 50.0, Lon: 19.9},
		},
		Profile: routing.ProfileDriving,
	})
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)

	assert.InDelta(t, 128400.0, resp.Routes[0].DistanceMeters, 1e-9)
	assert.InDelta(t, 5400.0, resp.Routes[0].DurationSeconds, 1e-9)
	assert.NotEmpty(t, resp.Routes[0].Geometry)
	assert.Equal(t, osrm.ProviderName, resp.Provider)
}

func TestClient_WaypointOrderInURL(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":1,"duration":1,"geometry":""}]}`))
	}))
	defer server.Close()

	client := osrm.NewClient(osrm.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{
			{Lat: 52.2, Lon: 21.0},
			{Lat: 51.1, Lon: 20.5},
			{Lat: 50.0, Lon: 19.9},
		},
	})
	require.NoError(t, err)

	// Coordinates appear as lon,lat in visiting order.
	assert.Contains(t, path, "21.000000,52.200000;20.500000,51.100000;19.900000,50.000000")
}

func TestClient_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	}))
	defer server.Close()

	client := osrm.NewClient(osrm.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{
			{Lat: 52.2, Lon: 21.0},
			{Lat: -33.9, Lon: 151.2},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestClient_TooFewWaypoints(t *testing.T) {
	client := osrm.NewClient(osrm.ClientConfig{HTTPClient: http.DefaultClient})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{{Lat: 52.2, Lon: 21.0}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrTooFewWaypoints)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := osrm.NewClient(osrm.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{
			{Lat: 52.2, Lon: 21.0},
			{Lat: 50.0, Lon: 19.9},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}
