// Package dualcache implements the primary/shadow A/B layer of spec.md
// §4.7: a primary ShardedCache that always serves traffic, and an optional
// comparison ShardedCache run side by side in demo mode to gather
// per-policy hit-rate statistics without affecting what callers see.
package dualcache

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/colander-cache/colander/cache"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// Mode selects how DualCache routes traffic to its comparison engine.
type Mode int32

const (
	// Demo queries both engines independently, so each accumulates its own
	// hit/miss counts, but only the primary's result is returned to the
	// caller.
	Demo Mode = iota
	// Bench consults and populates only the primary; the comparison engine
	// (if any) receives no traffic and its counters stop advancing.
	Bench
)

func (m Mode) String() string {
	if m == Bench {
		return "bench"
	}
	return "demo"
}

// DualCache wraps a primary cache.Cache and an optional comparison
// cache.Cache behind a single Cache-shaped surface, plus a runtime-togglable
// Mode. Comparison is nil when no comparison_policy was configured
// (spec.md §6); in that case Mode is always effectively Bench.
type DualCache struct {
	Primary    cache.Cache
	Comparison cache.Cache // nil if no comparison engine configured

	mode   atomic.Int32
	logger *zap.Logger
}

// New builds a DualCache. comparison may be nil to run with a single
// engine, in which case mode switching is a no-op.
func New(primary, comparison cache.Cache, logger *zap.Logger) *DualCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DualCache{Primary: primary, Comparison: comparison, logger: logger}
	d.mode.Store(int32(Demo))
	return d
}

// CurrentMode returns the active routing mode.
func (d *DualCache) CurrentMode() Mode {
	return Mode(d.mode.Load())
}

// SetMode atomically toggles routing. No cache data is dropped by a switch:
// the comparison engine's counters simply stop advancing in Bench mode and
// resume accumulating as soon as Demo is re-entered (spec.md §4.7).
func (d *DualCache) SetMode(m Mode) {
	old := Mode(d.mode.Swap(int32(m)))
	if old != m {
		d.logger.Info("dualcache: mode switch", zap.String("from", old.String()), zap.String("to", m.String()))
	}
}

// Get queries the primary for the value returned to the caller. In Demo
// mode with a comparison engine configured, the comparison engine is also
// queried (for its own hit/miss counters) and its result is discarded.
func (d *DualCache) Get(key string) (model.CachedResponse, bool) {
	value, ok := d.Primary.Get(key)
	if d.Comparison != nil && d.CurrentMode() == Demo {
		d.Comparison.Get(key)
	}
	return value, ok
}

// Put inserts into the primary, and in Demo mode also into the comparison
// engine with the same value (so both see identical admitted data).
func (d *DualCache) Put(key string, value model.CachedResponse) {
	d.Primary.Put(key, value)
	if d.Comparison != nil && d.CurrentMode() == Demo {
		d.Comparison.Put(key, value)
	}
}

// Remove deletes key from the primary (and the comparison engine in Demo
// mode), returning the primary's removed value.
func (d *DualCache) Remove(key string) (model.CachedResponse, bool) {
	value, ok := d.Primary.Remove(key)
	if d.Comparison != nil && d.CurrentMode() == Demo {
		d.Comparison.Remove(key)
	}
	return value, ok
}

// RawPut bypasses any proxy-facing admission rules (TTL default
// substitution, size limits — none of which the core itself enforces) and
// writes directly to the primary only. This is the path the RESP SET
// command uses (spec.md §4.7); it never touches the comparison engine,
// since shadow traffic is meant to mirror proxy-observed requests, not
// protocol-level writes.
func (d *DualCache) RawPut(key string, value model.CachedResponse) {
	d.Primary.Put(key, value)
}

// GetOrLoad delegates to the primary only; shadow comparison has no
// caller-supplied loader to run against; and GetOrLoad is a convenience on
// top of proxy-facing Get/Put semantics the comparison engine doesn't need.
func (d *DualCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context, key string) (model.CachedResponse, error)) (model.CachedResponse, error) {
	return d.Primary.GetOrLoad(ctx, key, load)
}

// Len returns the primary engine's resident key count.
func (d *DualCache) Len() int {
	return d.Primary.Len()
}

// Stats returns the primary engine's stats, matching the §6 external
// interface's stats() return shape. ComparisonStats exposes the shadow
// engine's stats separately.
func (d *DualCache) Stats() policy.Stats {
	return d.Primary.Stats()
}

// ComparisonStats returns the comparison engine's stats, or the zero value
// and false if none is configured.
func (d *DualCache) ComparisonStats() (policy.Stats, bool) {
	if d.Comparison == nil {
		return policy.Stats{}, false
	}
	return d.Comparison.Stats(), true
}

// Clear empties both engines.
func (d *DualCache) Clear() {
	d.Primary.Clear()
	if d.Comparison != nil {
		d.Comparison.Clear()
	}
}

var _ cache.Cache = (*DualCache)(nil)
