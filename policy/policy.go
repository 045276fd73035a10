// Package policy defines the CachePolicy contract implemented by the three
// eviction engines (SIEVE, LRU, FIFO) and consumed uniformly by
// cache.ShardedCache (spec.md §4.2).
package policy

import (
	"time"

	"github.com/colander-cache/colander/model"
)

// LockMode tells ShardedCache which lock an engine's Get hit path needs.
// SIEVE and FIFO hits mutate nothing but (for SIEVE) an atomic bit, so a
// shared read lock suffices; LRU's move-to-front requires a write lock
// (spec.md §4.3-§4.4, §5).
type LockMode uint8

const (
	// ReadLocked means Get may be called under a shard read lock; escalation
	// to a write lock is only needed for the rare expired-entry path (see
	// GetOutcome).
	ReadLocked LockMode = iota
	// WriteLocked means Get must always be called under a shard write lock.
	WriteLocked
)

// GetOutcome resolves the read/write-lock escalation protocol described in
// spec.md §5: a read-locked Get that finds an expired entry cannot safely
// remove it, so it reports OutcomeExpiredPendingRemoval and the caller
// retries under a write lock (writeLocked=true), at which point the engine
// performs the removal and returns OutcomeMiss.
type GetOutcome uint8

const (
	OutcomeHit GetOutcome = iota
	OutcomeMiss
	OutcomeExpiredPendingRemoval
)

// Stats is the uniform snapshot every engine reports (spec.md §4.2, §6).
type Stats struct {
	Name      string
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRate returns Hits/(Hits+Misses), or 0 when both are zero.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// CachePolicy is the contract every eviction engine implements. A single
// CachePolicy instance is not safe for concurrent use by itself — the
// caller (cache.shard) is responsible for holding the lock HitLockMode
// demands before calling Get, and a write lock for every Put/Remove/Clear.
type CachePolicy interface {
	// Get looks up key as of now. When writeLocked is false, an expired hit
	// is reported as OutcomeExpiredPendingRemoval without being removed;
	// the caller must retry with writeLocked=true to complete the removal.
	// A key that is simply absent is always decisive and counts as a miss
	// immediately, regardless of writeLocked; only the ambiguous expired
	// case withholds counting until the retry resolves it, to avoid double
	// counting.
	Get(key string, now time.Time, writeLocked bool) (value model.CachedResponse, outcome GetOutcome)

	// Put inserts or replaces key. If the key was already present, the
	// value is replaced in place with no eviction. Otherwise, if the
	// engine is at capacity, exactly one victim is evicted first. Returns
	// the number of evictions performed by this call (0 or 1).
	Put(key string, value model.CachedResponse) (evicted int)

	// Remove deletes key unconditionally (not subject to TTL). Idempotent:
	// a missing key returns ok=false.
	Remove(key string) (value model.CachedResponse, ok bool)

	Len() int
	Capacity() int
	Stats() Stats
	Clear()
	Name() string
	HitLockMode() LockMode
}
