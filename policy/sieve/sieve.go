// Package sieve implements the SIEVE eviction engine (spec.md §4.3): a
// lazily-promoted, hand-scanned cache whose hit path mutates only an
// atomic visited bit, so it can run under a shared read lock.
package sieve

import (
	"time"

	"github.com/colander-cache/colander/internal/arena"
	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/internal/nodestore"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// Engine is the SIEVE CachePolicy implementation. Not safe for concurrent
// use on its own — the owning shard's lock serializes every call.
type Engine struct {
	store *nodestore.Store
	clock clock.Clock
	hand  uint32

	hits, misses, evictions uint64
}

// New constructs an empty SIEVE engine with the given fixed capacity.
func New(capacity int) *Engine {
	return NewWithClock(capacity, clock.System{})
}

// NewWithClock is New with an injectable clock, for deterministic TTL
// tests of the eviction-time expiry check (spec.md §4.3 step 3).
func NewWithClock(capacity int, c clock.Clock) *Engine {
	return &Engine{
		store: nodestore.New(capacity),
		clock: c,
		hand:  arena.NoIndex,
	}
}

func (e *Engine) Name() string { return "SIEVE" }

// HitLockMode reports ReadLocked: the hit path only flips an atomic bit,
// never mutates list structure or the key map (spec.md §4.3, §9).
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
		e.removeExpired(idx)
		e.misses++
		return model.CachedResponse{}, policy.OutcomeMiss
	}
	node.SetVisited(true)
	e.hits++
	return node.Value, policy.OutcomeHit
}

// removeExpired unlinks idx, adjusting the hand first if it currently
// points at the node being removed, mirroring the eviction ordering rule
// of §9 ("update hand before unlinking").
func (e *Engine) removeExpired(idx uint32) {
	if e.hand == idx {
		e.advanceHandPast(idx)
	}
	e.store.Unlink(idx)
	e.store.FreeAndDeindex(idx)
	if e.store.Len() == 0 {
		e.hand = arena.NoIndex
	}
}

// advanceHandPast moves e.hand to idx's predecessor toward the head,
// wrapping to the tail if idx has none (idx is still linked at this point).
func (e *Engine) advanceHandPast(idx uint32) {
	next := e.store.Prev(idx)
	if next == arena.NoIndex {
		next = e.store.Tail()
		if next == idx {
			next = arena.NoIndex
		}
	}
	e.hand = next
}

func (e *Engine) Put(key string, value model.CachedResponse) (evicted int) {
	if idx, ok := e.store.Lookup(key); ok {
		node := e.store.At(idx)
		node.Value = value
		node.SetVisited(true)
		return 0
	}
	if e.store.Full() {
		e.evictOne(e.clock.Now())
		evicted = 1
	}
	idx := e.store.InsertHead(key, value)
	e.store.At(idx).SetVisited(false)
	return evicted
}

// evictOne runs the hand-scan eviction algorithm exactly once (spec.md
// §4.3). Pre: the store is non-empty.
func (e *Engine) evictOne(now time.Time) {
	if e.store.Len() == 0 {
		return
	}
	cur := e.hand
	if cur == arena.NoIndex {
		cur = e.store.Tail()
	}
	for {
		node := e.store.At(cur)
		if node.Value.IsExpired(now) {
			e.evictVictim(cur)
			return
		}
		if !node.Visited() {
			e.evictVictim(cur)
			return
		}
		node.SetVisited(false)
		next := e.store.Prev(cur)
		if next == arena.NoIndex {
			next = e.store.Tail()
		}
		cur = next
	}
}

// evictVictim sets the hand to the victim's predecessor (wrapping to tail)
// before unlinking it, per §9's ordering requirement, then removes it.
func (e *Engine) evictVictim(idx uint32) {
	next := e.store.Prev(idx)
	if next == arena.NoIndex {
		next = e.store.Tail()
		if next == idx {
			next = arena.NoIndex
		}
	}
	e.hand = next
	e.store.Unlink(idx)
	e.store.FreeAndDeindex(idx)
	e.evictions++
	if e.store.Len() == 0 {
		e.hand = arena.NoIndex
	}
}

func (e *Engine) Remove(key string) (model.CachedResponse, bool) {
	idx, ok := e.store.Lookup(key)
	if !ok {
		return model.CachedResponse{}, false
	}
	if e.hand == idx {
		e.advanceHandPast(idx)
	}
	val, _ := e.store.RemoveByKey(key)
	if e.store.Len() == 0 {
		e.hand = arena.NoIndex
	}
	return val, true
}

func (e *Engine) Clear() {
	e.store.Clear()
	e.hand = arena.NoIndex
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
