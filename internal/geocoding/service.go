package geocoding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/cache"
)

// MinQueryLength is the minimum number of characters (after trimming) a
// free-text query must have before it is sent to the provider.
const MinQueryLength = 3

// DefaultLimit caps the number of results returned per search.
const DefaultLimit = 10

// Provider performs forward geocoding.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Search geocodes a free-text query.
	Search(ctx context.Context, query string, limit int) ([]Location, error)

	// StructuredSearch geocodes an address split into components.
	StructuredSearch(ctx context.Context, query StructuredQuery, limit int) ([]Location, error)
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// CacheTTL is how long results are cached. Default: 24 hours.
	CacheTTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service geocodes queries through a provider, with a read-through cache in
// front. Identical queries within the TTL never hit the provider twice.
type Service struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewService creates a geocoding service. The cache may be nil, in which
// case every search goes to the provider.
func NewService(provider Provider, c cache.Cache, cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		provider: provider,
		cache:    c,
		ttl:      ttl,
		logger:   cfg.Logger,
	}
}

// Search geocodes a free-text query. Queries shorter than MinQueryLength
// after trimming fail with ErrQueryTooShort; a query that matches nothing
// fails with ErrNoResults and is never cached.
func (s *Service) Search(ctx context.Context, query string) ([]Location, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	key := cacheKey("q", strings.ToLower(trimmed))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	locations, err := s.provider.Search(ctx, trimmed, DefaultLimit)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, ErrNoResults
	}

	s.toCache(ctx, key, locations)
	return locations, nil
}

// StructuredSearch geocodes an address split into components. An address
// that matches nothing fails with ErrNoResults and is never cached.
func (s *Service) StructuredSearch(ctx context.Context, query StructuredQuery) ([]Location, error) {
	if query.IsEmpty() {
		return nil, ErrQueryTooShort
	}

	key := cacheKey("s", strings.ToLower(strings.Join([]string{
		query.Street, query.City, query.County, query.State, query.Country, query.PostalCode,
	}, "|")))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	locations, err := s.provider.StructuredSearch(ctx, query, DefaultLimit)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, ErrNoResults
	}

	s.toCache(ctx, key, locations)
	return locations, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Location, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt geocode cache entry")
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	return locations, true
}

func (s *Service) toCache(ctx context.Context, key string, locations []Location) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(locations)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
}

func cacheKey(kind, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("geocode:%s:%s", kind, hex.EncodeToString(sum[:16]))
}
