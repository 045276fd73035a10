// Package model defines the value stored in the cache core: an immutable
// CachedResponse carrying a response body, its metadata, and a lazily
// checked TTL.
package model

import (
	"errors"
	"time"
)

// ErrNonPositiveTTL is returned by New when ttl <= 0. TTL > 0 is a data
// model invariant: see spec.md §3.
var ErrNonPositiveTTL = errors.New("model: ttl must be positive")

// CachedResponse is the value half of the cache's key/value pair. Once
// constructed it is treated as immutable by every policy engine; a Put with
// an existing key replaces the record wholesale rather than mutating it.
type CachedResponse struct {
	Body        []byte
	ContentType string
	StatusCode  int
	Header      Headers

	// InsertedAt is the monotonic moment the value was admitted to the
	// cache. IsExpired compares against it, never against wall-clock drift.
	InsertedAt time.Time
	TTL        time.Duration
}

// New constructs a CachedResponse, rejecting a non-positive TTL.
func New(body []byte, contentType string, statusCode int, header Headers, ttl time.Duration, insertedAt time.Time) (CachedResponse, error) {
	if ttl <= 0 {
		return CachedResponse{}, ErrNonPositiveTTL
	}
	return CachedResponse{
		Body:        body,
		ContentType: contentType,
		StatusCode:  statusCode,
		Header:      header,
		InsertedAt:  insertedAt,
		TTL:         ttl,
	}, nil
}

// IsExpired reports whether the record is expired as of now:
// now - InsertedAt >= TTL.
func (r CachedResponse) IsExpired(now time.Time) bool {
	return now.Sub(r.InsertedAt) >= r.TTL
}
