// Package cache implements the 64-way sharded front over a CachePolicy
// engine (spec.md §4.6): ShardedCache hides key hashing, per-shard locking,
// and stat aggregation behind the Cache interface.
package cache

import (
	"context"
	"errors"
	"hash/maphash"

	"golang.org/x/sync/singleflight"

	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// NumShards is fixed at 64 per spec.md §4.6.
const NumShards = 64

// shardMask implements "hash(key) & 0x3F" — a constant-time mask in place
// of a modulo, valid because NumShards is a power of two.
const shardMask = NumShards - 1

// ErrNonPositiveCapacity is returned by New when capacity is not positive
// (spec.md §7: "capacity == 0 at construction" is a fatal condition).
var ErrNonPositiveCapacity = errors.New("cache: capacity must be positive")

// EngineFactory constructs a fresh, empty policy engine of a fixed
// capacity. config.New supplies one of these per the configured
// eviction_policy (spec.md §6).
type EngineFactory func(capacity int) policy.CachePolicy

// ShardedCache is the CachePolicy-agnostic sharded front described in
// spec.md §4.6. It never inspects an engine's internals — every shard
// holds a policy.CachePolicy built by the same EngineFactory, and routing,
// locking, and stat aggregation are the only logic this type owns.
type ShardedCache struct {
	shards  [NumShards]*shard
	seed    maphash.Seed
	metrics MetricsSink
	sf      singleflight.Group
}

// Option configures New. Constructed via the With* functions below.
type Option func(*config)

type config struct {
	metrics MetricsSink
	clock   clock.Clock
}

// WithMetrics overrides the default no-op metrics sink.
func WithMetrics(m MetricsSink) Option {
	return func(c *config) { c.metrics = m }
}

// WithClock overrides the default system clock. Intended for deterministic
// TTL tests.
func WithClock(cl clock.Clock) Option {
	return func(c *config) { c.clock = cl }
}

// New builds a ShardedCache of the given total capacity, using newEngine to
// construct each shard's policy engine. Capacity is partitioned per
// spec.md §4.6: every shard gets capacity/64 (floor), with the remainder
// absorbed entirely by shard 0, and a floor of 1 per shard so construction
// never hands an engine a non-positive capacity regardless of how small
// capacity is relative to NumShards.
func New(capacity int, newEngine EngineFactory, opts ...Option) (*ShardedCache, error) {
	if capacity <= 0 {
		return nil, ErrNonPositiveCapacity
	}

	cfg := config{metrics: NoopMetrics{}, clock: clock.System{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	sc := &ShardedCache{seed: maphash.MakeSeed(), metrics: cfg.metrics}

	base := capacity / NumShards
	remainder := capacity % NumShards
	for i := range sc.shards {
		shardCap := base
		if i == 0 {
			shardCap += remainder
		}
		if shardCap < 1 {
			shardCap = 1
		}
		sc.shards[i] = newShard(newEngine(shardCap), cfg.clock)
	}
	return sc, nil
}

// shardFor hashes key with a per-instance seeded hash (DoS-resistant: no
// attacker can predict collisions across process restarts) and masks to a
// shard index (spec.md §4.6).
func (c *ShardedCache) shardFor(key string) *shard {
	var h maphash.Hash
	h.SetSeed(c.seed)
	_, _ = h.WriteString(key)
	return c.shards[h.Sum64()&shardMask]
}

func (c *ShardedCache) Get(key string) (model.CachedResponse, bool) {
	s := c.shardFor(key)
	value, ok := s.get(key)
	if ok {
		c.metrics.Hit(s.name)
	} else {
		c.metrics.Miss(s.name)
	}
	return value, ok
}

func (c *ShardedCache) Put(key string, value model.CachedResponse) {
	s := c.shardFor(key)
	if evicted := s.put(key, value); evicted > 0 {
		c.metrics.Eviction(s.name)
	}
	c.metrics.Keys(s.name, c.Len())
}

func (c *ShardedCache) Remove(key string) (model.CachedResponse, bool) {
	s := c.shardFor(key)
	value, ok := s.remove(key)
	if ok {
		c.metrics.Keys(s.name, c.Len())
	}
	return value, ok
}

// GetOrLoad coalesces concurrent misses for the same key via singleflight:
// load runs at most once per outstanding miss regardless of how many
// goroutines call GetOrLoad concurrently for that key.
func (c *ShardedCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context, key string) (model.CachedResponse, error)) (model.CachedResponse, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if value, ok := c.Get(key); ok {
			return value, nil
		}
		value, err := load(ctx, key)
		if err != nil {
			return model.CachedResponse{}, err
		}
		c.Put(key, value)
		return value, nil
	})
	if err != nil {
		return model.CachedResponse{}, err
	}
	return v.(model.CachedResponse), nil
}

// Len sums per-shard sizes. Momentarily inconsistent across shards under
// concurrent writers is acceptable (spec.md §4.6) — counters are monotonic
// and advisory.
func (c *ShardedCache) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// Stats aggregates every shard's counters into one snapshot. Name is taken
// from shard 0 since every shard runs the same engine type.
func (c *ShardedCache) Stats() policy.Stats {
	var agg policy.Stats
	agg.Name = c.shards[0].name
	for _, s := range c.shards {
		st := s.stats()
		agg.Hits += st.Hits
		agg.Misses += st.Misses
		agg.Evictions += st.Evictions
		agg.Size += st.Size
		agg.Capacity += st.Capacity
	}
	return agg
}

// Clear empties every shard. All 64 shard locks are held simultaneously, in
// ascending index order, for the duration of the clear — the one exception
// to the "never hold more than one shard lock at a time" rule (spec.md §5).
func (c *ShardedCache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
	}
	for _, s := range c.shards {
		s.pol.Clear()
	}
	for i := len(c.shards) - 1; i >= 0; i-- {
		c.shards[i].mu.Unlock()
	}
}
