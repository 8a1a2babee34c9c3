package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamFetches *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	subQueryErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "titandash_upstream_fetches_total",
				Help: "Total upstream fetches by source and result",
			},
			[]string{"source", "result"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "titandash_fallbacks_total",
				Help: "Total fallbacks to mock or default data by section",
			},
			[]string{"section"},
		),
		subQueryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "titandash_subquery_errors_total",
				Help: "Total dashboard sub-query failures by slot",
			},
			[]string{"slot"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "titandash_cache_hits_total",
				Help: "Cache lookups by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "titandash_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "titandash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpstreamFetch records an upstream fetch attempt and its result.
func (r *Recorder) RecordUpstreamFetch(source, result string) {
	r.upstreamFetches.WithLabelValues(source, result).Inc()
}

// RecordFallback records a fallback to mock or default data.
func (r *Recorder) RecordFallback(section string) {
	r.fallbacks.WithLabelValues(section).Inc()
}

// RecordSubQueryError records a failed dashboard sub-query.
func (r *Recorder) RecordSubQueryError(slot string) {
	r.subQueryErrors.WithLabelValues(slot).Inc()
}

// RecordCacheLookup records a cache lookup outcome ("hit" or "miss").
func (r *Recorder) RecordCacheLookup(kind, outcome string) {
	r.cacheHits.WithLabelValues(kind, outcome).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
