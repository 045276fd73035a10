package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colander-cache/colander/model"
	"github.com/colander-cache/colander/policy"
	"github.com/colander-cache/colander/policy/sieve"
)

func randVal(r *rand.Rand) model.CachedResponse {
	v, err := model.New([]byte("x"), "text/plain", 200, model.Headers{}, time.Duration(10+r.Intn(1000))*time.Millisecond, time.Now())
	if err != nil {
		panic(err)
	}
	return v
}

// TestRaceMixedWorkload exercises a mixed Get/Put/Remove workload against a
// shared cache from many goroutines. It should pass under -race without
// detector reports; it also checks the size bound of spec.md §8 invariant 2.
func TestRaceMixedWorkload(t *testing.T) {
	c, err := New(8192, func(capacity int) policy.CachePolicy { return sieve.New(capacity) })
	if err != nil {
		t.Fatal(err)
	}

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 5000
	deadline := time.Now().Add(300 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(10) {
				case 0:
					c.Remove(k)
				case 1, 2, 3:
					c.Put(k, randVal(r))
				default:
					c.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 8192 {
		t.Fatalf("Len() = %d exceeds capacity", c.Len())
	}
}

// TestRaceGetOrLoad runs many concurrent GetOrLoad calls against the same
// key; the loader must run at most once (singleflight coalescing) and must
// be safe under -race.
func TestRaceGetOrLoad(t *testing.T) {
	c, err := New(1024, func(capacity int) policy.CachePolicy { return sieve.New(capacity) })
	if err != nil {
		t.Fatal(err)
	}

	var calls int64
	loader := func(ctx context.Context, k string) (model.CachedResponse, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(2 * time.Millisecond)
		return randVal(rand.New(rand.NewSource(1))), nil
	}

	const goroutines = 100
	key := "same-key"
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			if _, err := c.GetOrLoad(context.Background(), key, loader); err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("loader should run at most once, got %d", got)
	}
}
