package sieve

import (
	"testing"
	"time"

	"github.com/colander-cache/colander/internal/clock"
	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
)

func val(t *testing.T, body string) model.CachedResponse {
	t.Helper()
	r, err := model.New([]byte(body), "text/plain", 200, model.Headers{}, time.Hour, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	return r
}

// TestConcreteEvictionScenario reproduces spec.md §8's worked SIEVE example:
// cap 3, insert a,b,c; get(a); insert d evicts b; insert e (no intervening
// hits) evicts c.
func TestConcreteEvictionScenario(t *testing.T) {
	now := time.Unix(1000, 0)
	e := NewWithClock(3, clock.NewFake(now))

	e.Put("a", val(t, "a"))
	e.Put("b", val(t, "b"))
	e.Put("c", val(t, "c"))

	if _, outcome := e.Get("a", now, true); outcome != policy.OutcomeHit {
		t.Fatalf("get(a) outcome = %v, want Hit", outcome)
	}

	if ev := e.Put("d", val(t, "d")); ev != 1 {
		t.Fatalf("put(d) evicted = %d, want 1", ev)
	}
	if _, outcome := e.Get("b", now, true); outcome != policy.OutcomeMiss {
		t.Fatalf("b should have been evicted, got outcome %v", outcome)
	}
	// Lookup, not Get: a Get would be a hit on c and set its visited bit.
	if _, ok := e.store.Lookup("c"); !ok {
		t.Fatalf("c should still be resident")
	}

	if ev := e.Put("e", val(t, "e")); ev != 1 {
		t.Fatalf("put(e) evicted = %d, want 1", ev)
	}
	if _, outcome := e.Get("c", now, true); outcome != policy.OutcomeMiss {
		t.Fatalf("c should have been evicted next, got outcome %v", outcome)
	}
	if _, outcome := e.Get("d", now, true); outcome != policy.OutcomeHit {
		t.Fatalf("d should still be resident")
	}
	if _, outcome := e.Get("e", now, true); outcome != policy.OutcomeHit {
		t.Fatalf("e should still be resident")
	}

	st := e.Stats()
	if st.Evictions != 2 {
		t.Fatalf("evictions = %d, want 2", st.Evictions)
	}
}

func TestReplaceSemanticsNoEviction(t *testing.T) {
	e := New(2)
	e.Put("k", val(t, "v1"))
	e.Put("k", val(t, "v2"))

	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after replace", e.Len())
	}
	v, outcome := e.Get("k", time.Unix(0, 0), true)
	if outcome != policy.OutcomeHit || string(v.Body) != "v2" {
		t.Fatalf("get(k) = %q/%v, want v2/Hit", v.Body, outcome)
	}
	if e.Stats().Evictions != 0 {
		t.Fatal("replace must not evict")
	}
}

func TestIdempotentRemove(t *testing.T) {
	e := New(2)
	e.Put("a", val(t, "a"))

	if _, ok := e.Remove("a"); !ok {
		t.Fatal("first remove(a) should succeed")
	}
	if _, ok := e.Remove("a"); ok {
		t.Fatal("second remove(a) must report false")
	}
	if e.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", e.Len())
	}
}

func TestLazyTTLExpiryReadThenWriteLockEscalation(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	e := NewWithClock(2, fc)

	short, err := model.New([]byte("v"), "text/plain", 200, model.Headers{}, 100*time.Millisecond, fc.Now())
	if err != nil {
		t.Fatal(err)
	}
	e.Put("k", short)
	fc.Advance(200 * time.Millisecond)

	// Read-locked probe must report the pending-removal outcome without
	// mutating anything.
	if _, outcome := e.Get("k", fc.Now(), false); outcome != policy.OutcomeExpiredPendingRemoval {
		t.Fatalf("outcome = %v, want ExpiredPendingRemoval", outcome)
	}
	if e.Len() != 1 {
		t.Fatal("read-locked probe must not remove the expired entry")
	}

	// Write-locked retry completes the removal and reports a miss.
	if _, outcome := e.Get("k", fc.Now(), true); outcome != policy.OutcomeMiss {
		t.Fatalf("outcome = %v, want Miss", outcome)
	}
	if e.Len() != 0 {
		t.Fatal("write-locked retry must remove the expired entry")
	}

	st := e.Stats()
	if st.Evictions != 0 {
		t.Fatal("lazy TTL removal must not count as an eviction")
	}
	if st.Misses != 1 {
		t.Fatalf("misses = %d, want 1 (counted once, on the decisive retry)", st.Misses)
	}
}

func TestEvictionPrioritizesExpiryOverVisitedBit(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	e := NewWithClock(2, fc)

	short, _ := model.New([]byte("a"), "text/plain", 200, model.Headers{}, 50*time.Millisecond, fc.Now())
	e.Put("a", short)
	e.Put("b", val(t, "b"))

	e.Get("a", fc.Now(), true) // sets visited on a, otherwise it would survive one round
	fc.Advance(100 * time.Millisecond)

	e.Put("c", val(t, "c")) // forces one eviction; a is expired, must go first despite visited=true

	if _, ok := e.store.Lookup("a"); ok {
		t.Fatal("expired a must be evicted ahead of unvisited-bit scanning")
	}
	if _, ok := e.store.Lookup("b"); !ok {
		t.Fatal("b must survive")
	}
}

func TestSingleElementListAlwaysEvictsTheOnlyElement(t *testing.T) {
	e := New(1)
	e.Put("a", val(t, "a"))
	e.Get("a", time.Unix(0, 0), true) // set visited

	if ev := e.Put("b", val(t, "b")); ev != 1 {
		t.Fatalf("evicted = %d, want 1", ev)
	}
	if _, outcome := e.Get("a", time.Unix(0, 0), true); outcome != policy.OutcomeMiss {
		t.Fatal("a must have been evicted")
	}
	if _, outcome := e.Get("b", time.Unix(0, 0), true); outcome != policy.OutcomeHit {
		t.Fatal("b must be resident")
	}
}

func TestClearResetsCountersAndState(t *testing.T) {
	e := New(2)
	e.Put("a", val(t, "a"))
	e.Put("b", val(t, "b"))
	e.Put("c", val(t, "c")) // evicts one

	e.Clear()

	st := e.Stats()
	if st.Size != 0 || st.Hits != 0 || st.Misses != 0 || st.Evictions != 0 {
		t.Fatalf("Stats() after Clear = %+v, want all zero", st)
	}
	if e.Name() != "SIEVE" {
		t.Fatalf("Name() = %q, want SIEVE", e.Name())
	}
}
