package metrics

import (
	"net/http"
	"sync"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordSubmissionScored(category string, score int, duration time.Duration)
	RecordSignalFallback(signal, reason string)
	RecordGeocodeCache(result string)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordSubmissionScored(category string, score int, duration time.Duration) {}
func (m *NoOpMetrics) RecordSignalFallback(signal, reason string)                                {}
func (m *NoOpMetrics) RecordGeocodeCache(result string)                                          {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                                      {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                                    {}
func (m *NoOpMetrics) Handler() http.Handler                                                     { return http.NotFoundHandler() }

var (
	mu            sync.RWMutex
	globalMetrics Metrics = &NoOpMetrics{}
	initOnce      sync.Once
)

// Init switches the global metrics to the Prometheus implementation.
// Safe to call multiple times.
func Init() {
	initOnce.Do(func() {
		Set(NewPrometheus(nil))
	})
}

// Set replaces the global metrics implementation
func Set(m Metrics) {
	mu.Lock()
	defer mu.Unlock()
	globalMetrics = m
}

func current() Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return globalMetrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return current().Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	current().RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordSubmissionScored records one scored submission
func RecordSubmissionScored(category string, score int, duration time.Duration) {
	current().RecordSubmissionScored(category, score, duration)
}

// RecordSignalFallback records a signal that resolved to its default value
func RecordSignalFallback(signal, reason string) {
	current().RecordSignalFallback(signal, reason)
}

// RecordGeocodeCache records a geocode cache hit, miss or error
func RecordGeocodeCache(result string) {
	current().RecordGeocodeCache(result)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	current().SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	current().RecordDBQuery(operation, status)
}
