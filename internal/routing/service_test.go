package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdispatch/fleetdispatch/internal/routing"
)

type fakeProvider struct {
	calls int
	resp  *routing.DirectionsResponse
	err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) GetDirections(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func twoWaypoints() []routing.Coordinate {
	return []routing.Coordinate{
		{Lat: 52.2, Lon: 21.0},
		{Lat: 50.0, Lon: 19.9},
	}
}

func TestService_RejectsTooFewWaypoints(t *testing.T) {
	provider := &fakeProvider{}
	svc := routing.NewService(routing.ServiceConfig{Provider: provider})

	_, err := svc.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{{Lat: 52.2, Lon: 21.0}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrTooFewWaypoints)
	assert.Zero(t, provider.calls)
}

func TestService_RejectsInvalidCoordinates(t *testing.T) {
	provider := &fakeProvider{}
	svc := routing.NewService(routing.ServiceConfig{Provider: provider})

	_, err := svc.GetDirections(context.Background(), routing.DirectionsRequest{
		Waypoints: []routing.Coordinate{
			{Lat: 91.0, Lon: 21.0},
			{Lat: 50.0, Lon: 19.9},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
	assert.Zero(t, provider.calls)
}

func TestService_CachesDirections(t *testing.T) {
	provider := &fakeProvider{
		resp: &routing.DirectionsResponse{
			Routes:   []routing.Route{{DistanceMeters: 128400, DurationSeconds: 5400}},
			Provider: "fake",
		},
	}
	svc := routing.NewService(routing.ServiceConfig{Provider: provider})

	req := routing.DirectionsRequest{Waypoints: twoWaypoints()}

	first, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, provider.calls)
}

func TestService_ServesStaleOnProviderError(t *testing.T) {
	provider := &fakeProvider{
		resp: &routing.DirectionsResponse{
			Routes: []routing.Route{{DistanceMeters: 1000, DurationSeconds: 60}},
		},
	}
	svc := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		CacheTTL: time.Nanosecond,
	})

	req := routing.DirectionsRequest{Waypoints: twoWaypoints()}

	first, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	provider.err = routing.ErrProviderUnavailable

	second, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestService_ErrorWithoutCachePropagates(t *testing.T) {
	provider := &fakeProvider{err: routing.ErrProviderUnavailable}
	svc := routing.NewService(routing.ServiceConfig{Provider: provider})

	_, err := svc.GetDirections(context.Background(), routing.DirectionsRequest{Waypoints: twoWaypoints()})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}

func TestService_InvalidateCache(t *testing.T) {
	provider := &fakeProvider{
		resp: &routing.DirectionsResponse{Routes: []routing.Route{{DistanceMeters: 1}}},
	}
	svc := routing.NewService(routing.ServiceConfig{Provider: provider})

	req := routing.DirectionsRequest{Waypoints: twoWaypoints()}

	_, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)

	svc.InvalidateCache()

	_, err = svc.GetDirections(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}
