// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides an optional response cache for the search boundary.
// Entries are raw response bytes keyed by the search request, so repeated
// runs with the same goal avoid burning search API quota. Recommendation
// results themselves are never cached.
//
// Implements: prd008-caching (R1.1-R1.4).
package cache

import "context"

// Store is a byte-value cache with per-store TTL semantics. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, replacing any existing entry for the key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases underlying resources.
	Close() error
}
