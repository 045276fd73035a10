// Package lru implements the LRU eviction engine (spec.md §4.4): hits
// relink the node to the head of the list, so the hit path requires the
// shard's write lock.
package lru

import (
	"time"

	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/internal/nodestore"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// Engine is the LRU CachePolicy implementation. Not safe for concurrent
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

func (e *Engine) Name() string { return "LRU" }

// HitLockMode reports WriteLocked: every hit relinks the node to the head
// (spec.md §4.4).
func (e *Engine) HitLockMode() policy.LockMode { return policy.WriteLocked }

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
	value := node.Value
	e.store.MoveToHead(idx)
	e.hits++
	return value, policy.OutcomeHit
}

func (e *Engine) Put(key string, value model.CachedResponse) (evicted int) {
	if idx, ok := e.store.Lookup(key); ok {
		e.store.At(idx).Value = value
		e.store.MoveToHead(idx)
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
