// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Registry is private so repeated construction in tests cannot collide.
	Registry *prometheus.Registry

	httpDuration      *prometheus.HistogramVec
	analyticsDuration *prometheus.HistogramVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	backendErrors     *prometheus.CounterVec
	changesPublished  *prometheus.CounterVec
	changesConsumed   *prometheus.CounterVec
	recurringCreated  *prometheus.CounterVec
	snapshotsWritten  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		analyticsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_analytics_duration_seconds",
				Help:    "Duration of analytics operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_backend_errors_total",
				Help: "Total errors returned by ledger backends.",
			},
			[]string{"operation"},
		),
		changesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_changes_published_total",
				Help: "Change notifications published, by outcome.",
			},
			[]string{"outcome"},
		),
		changesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_changes_consumed_total",
				Help: "Change notifications consumed, by kind.",
			},
			[]string{"kind"},
		),
		recurringCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_recurring_records_created_total",
				Help: "Records created from recurring rules.",
			},
			[]string{"kind"},
		),
		snapshotsWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fintrack_insight_snapshots_written_total",
				Help: "Insight snapshots persisted by the worker.",
			},
		),
	}
}

// CounterFunc exports fn, which must be monotonic, as a counter. Components
// keeping their own atomic counts use it instead of a second counter.
func (m *Metrics) CounterFunc(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	promauto.With(m.Registry).NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, fn)
}

// GaugeFunc exports fn as a gauge sampled at scrape time.
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	promauto.With(m.Registry).NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) ObserveAnalytics(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.analyticsDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrBackendError(operation string) {
	if m == nil {
		return
	}
	m.backendErrors.WithLabelValues(operation).Inc()
}

// IncrPublished counts a publish attempt; outcome is "ok" or "error".
func (m *Metrics) IncrPublished(outcome string) {
	if m == nil {
		return
	}
	m.changesPublished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrConsumed(kind string) {
	if m == nil {
		return
	}
	m.changesConsumed.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrRecurringCreated(kind string) {
	if m == nil {
		return
	}
	m.recurringCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrSnapshotWritten() {
	if m == nil {
		return
	}
	m.snapshotsWritten.Inc()
}
