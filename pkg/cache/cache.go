// Package cache stores computed layouts and reports keyed by graph content.
//
// Layout computation is pure, so a result can be reused whenever the same
// payload arrives with the same options. Keys are derived from a SHA-256 hash
// of the canonical payload plus a hash of the options (see [Keyer]).
//
// Three backends are provided:
//   - [NullCache]: never stores anything; used when caching is disabled
//   - [FileCache]: one JSON file per entry; used by the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Read errors are never fatal to callers: the pipeline treats any error from
// Get as a miss and recomputes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLPlanar   = 24 * time.Hour // force layouts are not deterministic
	TTLReport   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
