package geocoding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdispatch/fleetdispatch/internal/cache"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
)

type fakeProvider struct {
	searchCalls     int
	structuredCalls int
	results         []geocoding.Location
	err             error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(_ context.Context, _ string, _ int) ([]geocoding.Location, error) {
	p.searchCalls++
	return p.results, p.err
}

func (p *fakeProvider) StructuredSearch(_ context.Context, _ geocoding.StructuredQuery, _ int) ([]geocoding.Location, error) {
	p.structuredCalls++
	return p.results, p.err
}

func TestService_SearchRejectsShortQueries(t *testing.T) {
	provider := &fakeProvider{}
	svc := geocoding.NewService(provider, nil, geocoding.ServiceConfig{})

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"two chars", "ab"},
		{"two chars padded", "  ab  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.query)
			assert.ErrorIs(t, err, geocoding.ErrQueryTooShort)
		})
	}

	assert.Zero(t, provider.searchCalls, "short queries must never reach the provider")
}

func TestService_SearchAcceptsThreeChars(t *testing.T) {
	provider := &fakeProvider{results: []geocoding.Location{{DisplayName: "abc", Lat: 1, Lon: 2}}}
	svc := geocoding.NewService(provider, nil, geocoding.ServiceConfig{})

	locations, err := svc.Search(context.Background(), " abc ")
	require.NoError(t, err)
	assert.Len(t, locations, 1)
	assert.Equal(t, 1, provider.searchCalls)
}

func TestService_SearchUsesCache(t *testing.T) {
	provider := &fakeProvider{results: []geocoding.Location{{DisplayName: "Warszawa", Lat: 52.23, Lon: 21.0}}}
	svc := geocoding.NewService(provider, cache.NewMemoryCache(), geocoding.ServiceConfig{})

	first, err := svc.Search(context.Background(), "warszawa")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "Warszawa")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.searchCalls, "second lookup should be served from cache")
}

func TestService_StructuredSearchRejectsEmptyQuery(t *testing.T) {
	provider := &fakeProvider{}
	svc := geocoding.NewService(provider, nil, geocoding.ServiceConfig{})

	_, err := svc.StructuredSearch(context.Background(), geocoding.StructuredQuery{})
	assert.ErrorIs(t, err, geocoding.ErrQueryTooShort)
	assert.Zero(t, provider.structuredCalls)
}

func TestService_StructuredSearchUsesCache(t *testing.T) {
	provider := &fakeProvider{results: []geocoding.Location{{DisplayName: "Kraków", Lat: 50.06, Lon: 19.93}}}
	svc := geocoding.NewService(provider, cache.NewMemoryCache(), geocoding.ServiceConfig{})

	query := geocoding.StructuredQuery{City: "Kraków", Country: "Poland"}

	_, err := svc.StructuredSearch(context.Background(), query)
	require.NoError(t, err)
	_, err = svc.StructuredSearch(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.structuredCalls)
}

func TestService_EmptyResultIsErrNoResults(t *testing.T) {
	provider := &fakeProvider{}
	svc := geocoding.NewService(provider, cache.NewMemoryCache(), geocoding.ServiceConfig{})

	_, err := svc.Search(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, geocoding.ErrNoResults)

	_, err = svc.StructuredSearch(context.Background(), geocoding.StructuredQuery{City: "Nowhere"})
	assert.ErrorIs(t, err, geocoding.ErrNoResults)

	// An empty result must not be cached: a later hit goes back to the
	// provider.
	_, err = svc.Search(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, geocoding.ErrNoResults)
	assert.Equal(t, 2, provider.searchCalls)
}

func TestService_StructuredCacheKeyedByCounty(t *testing.T) {
	provider := &fakeProvider{results: []geocoding.Location{{DisplayName: "Main St", Lat: 1, Lon: 2}}}
	svc := geocoding.NewService(provider, cache.NewMemoryCache(), geocoding.ServiceConfig{})

	_, err := svc.StructuredSearch(context.Background(), geocoding.StructuredQuery{Street: "Main St", County: "Cork"})
	require.NoError(t, err)
	_, err = svc.StructuredSearch(context.Background(), geocoding.StructuredQuery{Street: "Main St", County: "Kerry"})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.structuredCalls, "different counties must not share a cache entry")
}

func TestService_ProviderErrorNotCached(t *testing.T) {
	provider := &fakeProvider{err: geocoding.ErrProviderUnavailable}
	svc := geocoding.NewService(provider, cache.NewMemoryCache(), geocoding.ServiceConfig{})

	_, err := svc.Search(context.Background(), "warszawa")
	require.Error(t, err)

	_, err = svc.Search(context.Background(), "warszawa")
	require.Error(t, err)
	assert.Equal(t, 2, provider.searchCalls, "failures must not be cached")
}
