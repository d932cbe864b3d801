// Package cache provides byte-level caching for generated maps and rendered
// artifacts.
//
// Generation is deterministic, so a cache entry keyed by seed and rules
// fingerprint never goes stale - regenerating would reproduce the identical
// map. Caching exists purely to skip recomputation (and graphviz rendering)
// on repeat invocations.
//
// Backends:
//   - FileCache: XDG cache directory, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry -
	// the right choice for map entries, which can never go stale.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Key types used for observability hooks and key prefixes.
const (
	KeyTypeMap      = "map"
	KeyTypeArtifact = "artifact"
)

// MapKey returns the cache key for a generated map.
// Two calls with the same seed and rules fingerprint always collide, which
// is exactly the determinism guarantee.
func MapKey(seed, rulesID string) string {
	return hashKey(KeyTypeMap, seed, rulesID)
}

// ArtifactKey returns the cache key for a rendered artifact (dot, svg, png)
// of a particular map.
func ArtifactKey(mapHash, format string) string {
	return hashKey(KeyTypeArtifact, mapHash, format)
}
