// Package metrics provides Prometheus metrics for post search.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "postsearch"

// Metrics holds the collectors registered for one process. A nil *Metrics
// records nothing.
type Metrics struct {
	// SearchesTotal counts searches by the path that answered them.
	SearchesTotal *prometheus.CounterVec
	// SearchDuration measures search latency by path.
	SearchDuration *prometheus.HistogramVec
	// FallbacksTotal counts tier transitions.
	FallbacksTotal *prometheus.CounterVec
	// ResultsReturned observes result set sizes.
	ResultsReturned prometheus.Histogram
	// HTTPRequestsTotal counts HTTP requests by route and status.
	HTTPRequestsTotal *prometheus.CounterVec
	// StoreUp tracks store reachability (1 = reachable, 0 = not).
	StoreUp prometheus.Gauge
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SearchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of searches by answering path and status",
			},
			[]string{"path", "status"},
		),
		SearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Duration of searches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		FallbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Total number of search tier fallbacks",
			},
			[]string{"from", "to"},
		),
		ResultsReturned: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "results_returned",
				Help:      "Distribution of result set sizes",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		StoreUp: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_up",
				Help:      "Store reachability (1 = reachable, 0 = unreachable)",
			},
		),
	}
}

// RecordSearch records a finished search.
func (m *Metrics) RecordSearch(path, status string, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(path, status).Inc()
	m.SearchDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	if status == "ok" {
		m.ResultsReturned.Observe(float64(results))
	}
}

// RecordFallback records a transition between search tiers.
func (m *Metrics) RecordFallback(from, to string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(from, to).Inc()
}

// RecordHTTP records an HTTP response.
func (m *Metrics) RecordHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}

// SetStoreUp records the outcome of a store health check.
func (m *Metrics) SetStoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.StoreUp.Set(1)
		return
	}
	m.StoreUp.Set(0)
}
