package shared

import (
	"context"
	"time"
)

// ViewCache stores rendered read-model payloads keyed by the route path that
// displays them. A path may hold several variants (query string, page), and
// invalidating a path drops every variant at once so the next read goes back
// to the store.
//
// Every path carries a generation that Invalidate advances. Readers take the
// generation before loading from the store and hand it to Set, which drops the
// write when the path was invalidated in between.
type ViewCache interface {
	// Get returns the cached payload for path and variant.
	// The boolean is false on a miss.
	Get(ctx context.Context, path, variant string) ([]byte, bool, error)

	// Generation returns the current generation of path
	Generation(ctx context.Context, path string) (uint64, error)

	// Set stores a payload for path and variant with a TTL if path is still at
	// generation. The boolean reports whether the payload was stored.
	Set(ctx context.Context, path, variant string, value []byte, ttl time.Duration, generation uint64) (bool, error)

	// Invalidate drops every cached variant of path and advances its generation
	Invalidate(ctx context.Context, path string) error

	// Close closes the cache and releases resources
	Close() error
}
