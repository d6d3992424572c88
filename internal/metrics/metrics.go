// Package metrics exposes Prometheus counters for API requests, retries,
// cache lookups and enrichment outcomes.
//
// A nil *Recorder is valid and records nothing, so components can accept
// one unconditionally. Batch runs have no scrape endpoint; WriteTextfile
// dumps the registry in the node_exporter textfile format instead.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheError    = "error"
	CacheDisabled = "disabled"
)

// Recorder wraps the Prometheus collectors used by the enrichment pipeline.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	retriesTotal     prometheus.Counter
	rateLimitedTotal prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	outcomesTotal    *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry under namespace.
func New(namespace string) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Spotify API requests by endpoint and response class",
			},
			[]string{"endpoint", "outcome"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total retry attempts made by the requester",
			},
		),

		rateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total HTTP 429 responses received",
			},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"},
		),

		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrich_outcomes_total",
				Help:      "Per-identifier enrichment outcomes by kind and status",
			},
			[]string{"kind", "status"},
		),

		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Wall time spent resolving one batch, cache included",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60, 180},
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		r.requestsTotal,
		r.retriesTotal,
		r.rateLimitedTotal,
		r.cacheLookups,
		r.outcomesTotal,
		r.batchDuration,
	)

	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Request(endpoint, outcome string) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (r *Recorder) Retry() {
	if r == nil {
		return
	}
	r.retriesTotal.Inc()
}

func (r *Recorder) RateLimited() {
	if r == nil {
		return
	}
	r.rateLimitedTotal.Inc()
}

func (r *Recorder) CacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) Outcomes(kind, status string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.outcomesTotal.WithLabelValues(kind, status).Add(float64(n))
}

func (r *Recorder) BatchDuration(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.batchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// WriteTextfile writes the current values to path in the Prometheus text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
