// Package config assembles a CachePolicy engine factory from the
// capacity/default_ttl_seconds/eviction_policy/comparison_policy knobs of
// spec.md §6, via the same functional-options pattern the cache core itself
// uses (cache.Option). Collaborators (the proxy, the RESP server — both out
// of scope here) read this once at startup and pass the result into
// cache.New/dualcache.New.
package config

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/colander-cache/colander/cache"
	"github.com/colander-cache/colander/policy"
	"github.com/colander-cache/colander/policy/fifo"
	"github.com/colander-cache/colander/policy/lru"
	"github.com/colander-cache/colander/policy/sieve"
)

// EvictionPolicy is one of the three engines spec.md §6 enumerates.
type EvictionPolicy string

const (
	Sieve EvictionPolicy = "sieve"
	LRU   EvictionPolicy = "lru"
	FIFO  EvictionPolicy = "fifo"
)

var (
	ErrNonPositiveCapacity = errors.New("config: capacity must be positive")
	ErrNonPositiveTTL      = errors.New("config: default_ttl_seconds must be positive")
	ErrUnknownPolicy       = errors.New("config: eviction_policy must be one of sieve, lru, fifo")
)

// Config holds the validated construction knobs for one cache core
// (spec.md §6's "Configuration" list, minus max_body_size_bytes, which is
// the proxy's concern, not the core's).
type Config struct {
	Capacity         int
	DefaultTTL       time.Duration
	EvictionPolicy   EvictionPolicy
	ComparisonPolicy EvictionPolicy // zero value "" means no comparison engine
	hasComparison    bool
	Logger           *zap.Logger
}

// Option configures New.
type Option func(*Config)

// WithComparisonPolicy enables a second engine for dualcache.DualCache's
// demo-mode A/B comparison (spec.md §4.7). Omit it to run a single engine.
func WithComparisonPolicy(p EvictionPolicy) Option {
	return func(c *Config) {
		c.ComparisonPolicy = p
		c.hasComparison = true
	}
}

// WithLogger plugs an external zap.Logger. Construction validation failures
// this package chooses to log-and-return, and DualCache mode transitions,
// are the only things ever logged — never the cache hot path.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// New validates capacity/defaultTTL/policy and returns a Config ready to
// drive cache/dualcache construction. Validation failures are logged at
// Error level before being returned, per the ambient logging carried from
// Voskan/arena-cache's config package.
func New(capacity int, defaultTTL time.Duration, evictionPolicy EvictionPolicy, opts ...Option) (*Config, error) {
	cfg := &Config{
		Capacity:       capacity,
		DefaultTTL:     defaultTTL,
		EvictionPolicy: evictionPolicy,
		Logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		cfg.Logger.Error("config: invalid configuration", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Capacity <= 0 {
		return ErrNonPositiveCapacity
	}
	if c.DefaultTTL <= 0 {
		return ErrNonPositiveTTL
	}
	if _, ok := factories[c.EvictionPolicy]; !ok {
		return ErrUnknownPolicy
	}
	if c.hasComparison {
		if _, ok := factories[c.ComparisonPolicy]; !ok {
			return ErrUnknownPolicy
		}
	}
	return nil
}

// HasComparison reports whether a comparison engine was requested.
func (c *Config) HasComparison() bool { return c.hasComparison }

var factories = map[EvictionPolicy]cache.EngineFactory{
	Sieve: func(capacity int) policy.CachePolicy { return sieve.New(capacity) },
	LRU:   func(capacity int) policy.CachePolicy { return lru.New(capacity) },
	FIFO:  func(capacity int) policy.CachePolicy { return fifo.New(capacity) },
}

// EngineFactory returns the cache.EngineFactory for EvictionPolicy p. Only
// valid after a Config built by New, which has already rejected unknown
// policy names.
func EngineFactory(p EvictionPolicy) cache.EngineFactory {
	return factories[p]
}
