package cache

import (
	"sync"

	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/internal/util"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

// shard is one partition of a ShardedCache: an independent lock guarding
// exactly one policy engine (spec.md §4.6, §5: "one lock per shard; never
// hold more than one shard lock simultaneously except in Clear").
type shard struct {
	mu    sync.RWMutex
	pol   policy.CachePolicy
	clock clock.Clock
	name  string // pol.Name(), cached: it never changes and metrics need it on every call

	_ util.CacheLinePad // keeps neighboring shards off this one's cache line
}

func newShard(pol policy.CachePolicy, c clock.Clock) *shard {
	return &shard{pol: pol, clock: c, name: pol.Name()}
}

// get implements the read/write lock escalation protocol of spec.md §5: a
// read-locked probe that finds an expired entry releases the read lock,
// re-checks under the write lock, and removes if still expired. Engines
// whose HitLockMode is WriteLocked skip straight to the write-locked path
// since their hit path always mutates the list.
func (s *shard) get(key string) (model.CachedResponse, bool) {
	now := s.clock.Now()

	if s.pol.HitLockMode() == policy.ReadLocked {
		s.mu.RLock()
		value, outcome := s.pol.Get(key, now, false)
		s.mu.RUnlock()

		switch outcome {
		case policy.OutcomeHit:
			return value, true
		case policy.OutcomeMiss:
			return model.CachedResponse{}, false
		case policy.OutcomeExpiredPendingRemoval:
			// fall through to the write-locked retry below
		}
	}

	s.mu.Lock()
	value, outcome := s.pol.Get(key, now, true)
	s.mu.Unlock()
	return value, outcome == policy.OutcomeHit
}

func (s *shard) put(key string, value model.CachedResponse) (evicted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Put(key, value)
}

func (s *shard) remove(key string) (model.CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Remove(key)
}

func (s *shard) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pol.Len()
}

func (s *shard) stats() policy.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pol.Stats()
}

func (s *shard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pol.Clear()
}
