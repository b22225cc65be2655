// Package cache stores rendered layout results keyed by their input.
//
// Graphviz runs dominate the cost of an autolayout. The output depends only on
// the DOT text and the engine, so it can be reused across runs and across
// processes. [FileCache] keeps entries on disk for the CLI; [NullCache]
// disables caching.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.LayoutKey("dot", dotText)
//	if data, hit, _ := c.Get(ctx, key); hit { ... }
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
