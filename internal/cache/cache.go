// Package cache provides a small byte-oriented cache used by the geocoding
// and routing services. The redis implementation backs production; the
// in-memory implementation backs tests and single-node deployments.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL. A miss is
// reported as (nil, nil) so callers can fall through to the origin without
// branching on error types.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
