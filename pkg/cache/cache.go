// Package cache provides the byte-level caching used by the layout pipeline.
//
// A [Cache] stores opaque values with a TTL. Three backends are provided:
// [FileCache] for the CLI, [RedisCache] for the API server, and [NullCache]
// when caching is disabled. Keys are produced by a [Keyer], so every backend
// shares one key scheme.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-entry expiry.
// Get reports a miss with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes per entry kind.
const (
	// TTLLayout is long: layout keys include the head commit, so a new
	// commit produces a new key rather than a stale hit.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact covers rendered outputs derived from a cached layout.
	TTLArtifact = 7 * 24 * time.Hour
)

// GetJSON reads key and decodes it into v. Undecodable entries are deleted
// and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
