package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "civictriage"

// PrometheusMetrics records metrics into a Prometheus registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	submissionsScored *prometheus.CounterVec
	priorityScore     *prometheus.HistogramVec
	scoringDuration   prometheus.Histogram
	signalFallbacks   *prometheus.CounterVec
	geocodeCache      *prometheus.CounterVec
	dbConnsActive     prometheus.Gauge
	dbQueries         *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg. A nil
// registry gets a fresh one that also exposes Go runtime and process metrics.
func NewPrometheus(reg *prometheus.Registry) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}

	m := &PrometheusMetrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		submissionsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "submissions_total",
			Help:      "Total submissions scored, labeled by category.",
		}, []string{"category"}),
		priorityScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "priority_score",
			Help:      "Distribution of computed priority scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"category"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "End-to-end time to score one submission, including external signals.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		signalFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "signal_fallbacks_total",
			Help:      "Signals that resolved to their documented default, labeled by signal and reason.",
		}, []string{"signal", "reason"}),
		geocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocoder",
			Name:      "cache_requests_total",
			Help:      "Geocode cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		dbConnsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "connections_active",
			Help:      "Database connections currently acquired from the pool.",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Database statements by operation and status.",
		}, []string{"operation", "status"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.submissionsScored,
		m.priorityScore,
		m.scoringDuration,
		m.signalFallbacks,
		m.geocodeCache,
		m.dbConnsActive,
		m.dbQueries,
	)

	return m
}

func (m *PrometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSubmissionScored(category string, score int, duration time.Duration) {
	m.submissionsScored.WithLabelValues(category).Inc()
	m.priorityScore.WithLabelValues(category).Observe(float64(score))
	m.scoringDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSignalFallback(signal, reason string) {
	m.signalFallbacks.WithLabelValues(signal, reason).Inc()
}

func (m *PrometheusMetrics) RecordGeocodeCache(result string) {
	m.geocodeCache.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) SetDBConnectionsActive(count float64) {
	m.dbConnsActive.Set(count)
}

func (m *PrometheusMetrics) RecordDBQuery(operation, status string) {
	m.dbQueries.WithLabelValues(operation, status).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
