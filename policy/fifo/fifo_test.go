package fifo

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

// TestInsertionOrderSurvivesOverCapacity reproduces spec.md §8's FIFO law:
// insert k1..kn with n > capacity; the surviving keys are the most recent
// `capacity` insertions, unaffected by intervening gets.
func TestInsertionOrderSurvivesOverCapacity(t *testing.T) {
	e := New(3)
	now := time.Unix(0, 0)

	for _, k := range []string{"k1", "k2", "k3"} {
		e.Put(k, val(t, k))
	}

	// Gets must not change eviction order for FIFO.
	e.Get("k1", now, true)
	e.Get("k1", now, true)

	e.Put("k4", val(t, "k4"))
	e.Put("k5", val(t, "k5"))

	for _, k := range []string{"k1", "k2"} {
		if _, outcome := e.Get(k, now, true); outcome != policy.OutcomeMiss {
			t.Fatalf("%s should have been evicted (insertion order, gets don't matter)", k)
		}
	}
	for _, k := range []string{"k3", "k4", "k5"} {
		if _, outcome := e.Get(k, now, true); outcome != policy.OutcomeHit {
			t.Fatalf("%s should still be resident", k)
		}
	}
}

func TestReplaceDoesNotRelink(t *testing.T) {
	e := New(2)
	e.Put("a", val(t, "a"))
	e.Put("b", val(t, "b"))
	e.Put("a", val(t, "a2")) // replace; must NOT move a to the front

	// a was inserted first, so it is still the eviction candidate despite
	// being the most recently replaced.
	if ev := e.Put("c", val(t, "c")); ev != 1 {
		t.Fatalf("evicted = %d, want 1", ev)
	}
	if _, outcome := e.Get("a", time.Unix(0, 0), true); outcome != policy.OutcomeMiss {
		t.Fatal("a should have been evicted despite being replaced most recently")
	}
	if _, outcome := e.Get("b", time.Unix(0, 0), true); outcome != policy.OutcomeHit {
		t.Fatal("b should still be resident")
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

	if _, outcome := e.Get("k", fc.Now(), false); outcome != policy.OutcomeExpiredPendingRemoval {
		t.Fatalf("outcome = %v, want ExpiredPendingRemoval", outcome)
	}
	if _, outcome := e.Get("k", fc.Now(), true); outcome != policy.OutcomeMiss {
		t.Fatalf("outcome = %v, want Miss", outcome)
	}
	if e.Stats().Evictions != 0 {
		t.Fatal("lazy TTL removal must not count as an eviction")
	}
}

func TestClearResetsCountersAndState(t *testing.T) {
	e := New(2)
	e.Put("a", val(t, "a"))
	e.Put("b", val(t, "b"))
	e.Put("c", val(t, "c"))

	e.Clear()

	st := e.Stats()
	if st.Size != 0 || st.Hits != 0 || st.Misses != 0 || st.Evictions != 0 {
		t.Fatalf("Stats() after Clear = %+v, want all zero", st)
	}
	if e.Name() != "FIFO" {
		t.Fatalf("Name() = %q, want FIFO", e.Name())
	}
	if e.HitLockMode() != policy.ReadLocked {
		t.Fatal("FIFO hit path only needs the read lock")
	}
}
