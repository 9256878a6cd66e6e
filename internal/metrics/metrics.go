package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	ObserveSyncRun(outcome string, duration time.Duration)
	SetSyncChanges(kind string, count int)
	IncSkippedRecords(reason string)
	IncTimeZoneCache(hit bool)
}

type PrometheusProvider struct {
	gatherer        prometheus.Gatherer
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	syncRuns        *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	syncChanges     *prometheus.GaugeVec
	skippedRecords  *prometheus.CounterVec
	tzCache         *prometheus.CounterVec
}

// NewProvider returns a noop provider when disabled. reg also serves as the
// gatherer behind Handler.
func NewProvider(enabled bool, reg *prometheus.Registry) Provider {
	if !enabled {
		return &noopMetrics{}
	}
	factory := promauto.With(reg)

	return &PrometheusProvider{
		gatherer: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "animeschedule_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "animeschedule_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		syncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "animeschedule_catalog_sync_runs_total",
			Help: "Catalog synchronization runs by outcome",
		}, []string{"outcome"}),

		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "animeschedule_catalog_sync_duration_seconds",
			Help:    "Catalog synchronization wall time in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		syncChanges: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animeschedule_catalog_sync_changes",
			Help: "Changes applied by the last successful synchronization",
		}, []string{"kind"}),

		skippedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "animeschedule_catalog_skipped_records_total",
			Help: "Catalog records skipped during normalization",
		}, []string{"reason"}),

		tzCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "animeschedule_timezone_cache_total",
			Help: "User timezone cache lookups",
		}, []string{"result"}),
	}
}

func (m *PrometheusProvider) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *PrometheusProvider) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *PrometheusProvider) ObserveSyncRun(outcome string, duration time.Duration) {
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(duration.Seconds())
}

func (m *PrometheusProvider) SetSyncChanges(kind string, count int) {
	m.syncChanges.WithLabelValues(kind).Set(float64(count))
}

func (m *PrometheusProvider) IncSkippedRecords(reason string) {
	m.skippedRecords.WithLabelValues(reason).Inc()
}

func (m *PrometheusProvider) IncTimeZoneCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.tzCache.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the text exposition format.
func (m *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) ObserveSyncRun(_ string, _ time.Duration)         {}
func (n *noopMetrics) SetSyncChanges(_ string, _ int)                   {}
func (n *noopMetrics) IncSkippedRecords(_ string)                       {}
func (n *noopMetrics) IncTimeZoneCache(_ bool)                          {}

// Noop is shared by tests and callers that never expose metrics.
func Noop() Provider { return &noopMetrics{} }
