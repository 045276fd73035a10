// Package fifo implements the FIFO eviction engine (spec.md §4.5): hits
// never reorder the list, so a read lock suffices, and in-place replacement
// of an existing key does not relink it either — insertion order is
// preserved for as long as the key survives.
package fifo

import (
	"time"

	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/internal/nodestore"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// Engine is the FIFO CachePolicy implementation. Not safe for concurrent
// use on its own — the owning shard's lock serializes every call.
type Engine struct {
	store *nodestore.Store
	clock clock.Clock

	hits, misses, evictions uint64
}

func New(capacity int) *Engine {
	return NewWithClock(capacity, clock.System{})
}

func NewWithClock(capacity int, c clock.Clock) *Engine {
	return &Engine{store: nodestore.New(capacity), clock: c}
}

func (e *Engine) Name() string { return "FIFO" }

// HitLockMode reports ReadLocked: hits neither reorder the list nor touch
// any per-node flag (spec.md §4.5).
func (e *Engine) HitLockMode() policy.LockMode { return policy.ReadLocked }

func (e *Engine) Len() int      { return e.store.Len() }
func (e *Engine) Capacity() int { return e.store.Capacity() }

func (e *Engine) Get(key string, now time.Time, writeLocked bool) (model.CachedResponse, policy.GetOutcome) {
	idx, ok := e.store.Lookup(key)
	if !ok {
		e.misses++
		return model.CachedResponse{}, policy.OutcomeMiss
	}
	node := e.store.At(idx)
	if node.Value.IsExpired(now) {
		if !writeLocked {
			return model.CachedResponse{}, policy.OutcomeExpiredPendingRemoval
		}
		e.store.Unlink(idx)
		e.store.FreeAndDeindex(idx)
		e.misses++
		return model.CachedResponse{}, policy.OutcomeMiss
	}
	e.hits++
	return node.Value, policy.OutcomeHit
}

// Put replaces an existing key's value without relinking — insertion
// order (and therefore eviction order) is unaffected by replacement or by
// gets (spec.md §4.5). New keys are spliced at the head, same as LRU; the
// distinction from LRU is entirely in what Get and replace do NOT do.
func (e *Engine) Put(key string, value model.CachedResponse) (evicted int) {
	if idx, ok := e.store.Lookup(key); ok {
		e.store.At(idx).Value = value
		return 0
	}
	if e.store.Full() {
		tail := e.store.Tail()
		e.store.Unlink(tail)
		e.store.FreeAndDeindex(tail)
		e.evictions++
		evicted = 1
	}
	e.store.InsertHead(key, value)
	return evicted
}

func (e *Engine) Remove(key string) (model.CachedResponse, bool) {
	return e.store.RemoveByKey(key)
}

func (e *Engine) Clear() {
	e.store.Clear()
	e.hits, e.misses, e.evictions = 0, 0, 0
}

func (e *Engine) Stats() policy.Stats {
	return policy.Stats{
		Name:      e.Name(),
		Hits:      e.hits,
		Misses:    e.misses,
		Evictions: e.evictions,
		Size:      e.Len(),
		Capacity:  e.Capacity(),
	}
}
