// Package prom implements cache.MetricsSink with the exact metric names and
// types spec.md §6 names, so downstream Prometheus wiring stays compatible
// regardless of which policy backs the cache.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/colander-cache/colander/cache"
)

// Adapter exports the four spec.md §6 metrics, each labeled by the
// engine's uppercase name ("SIEVE"/"LRU"/"FIFO"). Safe for concurrent use —
// every Prometheus metric type is goroutine-safe.
type Adapter struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	keys      *prometheus.GaugeVec
	evictions *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter and registers its metrics
// with reg (nil uses prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colander_cache_hits_total",
			Help: "Total cache hits, by eviction policy.",
		}, []string{"policy"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colander_cache_misses_total",
			Help: "Total cache misses, by eviction policy.",
		}, []string{"policy"}),
		keys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "colander_cache_keys",
			Help: "Current resident key count, by eviction policy.",
		}, []string{"policy"}),
		evictions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "colander_cache_evictions_total",
			Help: "Total evictions, by eviction policy.",
		}, []string{"policy"}),
	}
	reg.MustRegister(a.hits, a.misses, a.keys, a.evictions)
	return a
}

func (a *Adapter) Hit(policyName string)  { a.hits.WithLabelValues(policyName).Inc() }
func (a *Adapter) Miss(policyName string) { a.misses.WithLabelValues(policyName).Inc() }
func (a *Adapter) Eviction(policyName string) {
	a.evictions.WithLabelValues(policyName).Inc()
}
func (a *Adapter) Keys(policyName string, n int) {
	a.keys.WithLabelValues(policyName).Set(float64(n))
}

var _ cache.MetricsSink = (*Adapter)(nil)
