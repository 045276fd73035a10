package config

import (
	"sync/atomic"
	"time"
)

// TTLRef is the atomic swap-of-default-TTL mechanism spec.md §6 names:
// "default_ttl_seconds ... mutable at runtime via atomic swap of a shared
// TTL reference consulted by the proxy before every put". It is a
// proxy-facing utility — the cache core's Put always takes TTL from the
// CachedResponse value handed to it and never consults a TTLRef itself.
type TTLRef struct {
	nanos atomic.Int64
}

// NewTTLRef returns a TTLRef initialized to ttl.
func NewTTLRef(ttl time.Duration) *TTLRef {
	r := &TTLRef{}
	r.nanos.Store(int64(ttl))
	return r
}

// Load returns the current TTL.
func (r *TTLRef) Load() time.Duration {
	return time.Duration(r.nanos.Load())
}

// Store atomically replaces the TTL used for puts issued after this call
// returns. In-flight puts that already read the old value are unaffected.
func (r *TTLRef) Store(ttl time.Duration) {
	r.nanos.Store(int64(ttl))
}
