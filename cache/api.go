package cache

import (
	"context"

	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// Cache is the API surface spec.md §6 says external collaborators (the
// HTTP proxy, the RESP2 server) consume. ShardedCache is the only
// implementation; the interface exists so those out-of-scope layers can be
// written, tested, and mocked against a narrow contract instead of the
// concrete sharded type.
type Cache interface {
	// Get returns the value for key and whether it was present. A miss and
	// an expired-then-removed hit are indistinguishable to the caller — both
	// report ok=false (spec.md §4.2, §6).
	Get(key string) (model.CachedResponse, bool)

	// Put inserts or replaces key. value carries its own TTL and insertion
	// timestamp (spec.md §3): the core never consults a default TTL itself.
	Put(key string, value model.CachedResponse)

	// Remove deletes key unconditionally. Idempotent: a missing key reports
	// ok=false on every call.
	Remove(key string) (model.CachedResponse, bool)

	// GetOrLoad returns key's value, loading it via load on miss. Concurrent
	// loads for the same key are coalesced: load runs at most once per
	// outstanding miss regardless of how many goroutines call GetOrLoad
	// concurrently for that key.
	GetOrLoad(ctx context.Context, key string, load func(ctx context.Context, key string) (model.CachedResponse, error)) (model.CachedResponse, error)

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Stats returns the aggregate counters across all shards (spec.md §6).
	Stats() policy.Stats

	// Clear empties every shard and resets every counter.
	Clear()
}

var _ Cache = (*ShardedCache)(nil)
