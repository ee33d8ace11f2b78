// Package metrics provides Prometheus metrics for the kickhub service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector kickhub exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Live pipeline
	eventsReceived      *prometheus.CounterVec
	eventsDuplicate     prometheus.Counter
	eventsReduced       prometheus.Counter
	reducerLatency      prometheus.Histogram
	integrityViolations *prometheus.CounterVec
	queueSize           *prometheus.GaugeVec
	activeSessions      prometheus.Gauge

	// Comparisons
	pipelineDuration prometheus.Histogram
	playerFetches    *prometheus.CounterVec
	comparisons      prometheus.Gauge

	// Historical store
	storeQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kickhub",
		subsystem:        "stats",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.eventsReceived = m.counterVec("live_events_received_total",
		"Live records delivered by the transport", "transport")
	m.eventsDuplicate = m.counter("live_events_duplicate_total",
		"Live records dropped as redeliveries")
	m.eventsReduced = m.counter("live_events_reduced_total",
		"Live records folded into a match state")
	m.reducerLatency = m.histogram("reducer_latency_milliseconds",
		"Time spent folding one live record")
	m.integrityViolations = m.counterVec("integrity_violations_total",
		"Reducer integrity signals by kind", "kind")
	m.queueSize = m.gaugeVec("live_queue_size",
		"Records waiting to be folded per session", "session")
	m.activeSessions = m.gauge("live_sessions_active",
		"Live sessions currently running")

	m.pipelineDuration = m.histogram("filter_pipeline_duration_milliseconds",
		"Time spent recomputing a comparison view")
	m.playerFetches = m.counterVec("player_fetches_total",
		"Historical player fetches by result", "result")
	m.comparisons = m.gauge("comparisons_active",
		"Comparison controllers held by the service")

	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds",
		"Historical store query latency", "op")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

// RecordEventReceived counts a record delivered by a transport (memory, mqtt).
func RecordEventReceived(transport string) {
	globalManager.eventsReceived.WithLabelValues(transport).Inc()
}

// RecordEventDuplicate counts a redelivered record.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventReduced counts a record folded into a match state.
func RecordEventReduced() {
	globalManager.eventsReduced.Inc()
}

// RecordReducerLatency records the time spent folding one record.
func RecordReducerLatency(latencyMs float64) {
	globalManager.reducerLatency.Observe(latencyMs)
}

// RecordIntegrityViolation counts a reducer integrity signal.
func RecordIntegrityViolation(kind string) {
	globalManager.integrityViolations.WithLabelValues(kind).Inc()
}

// UpdateQueueSize sets the backlog of one session.
func UpdateQueueSize(session string, size int) {
	globalManager.queueSize.WithLabelValues(session).Set(float64(size))
}

// DeleteQueueSize drops the backlog series of a stopped session.
func DeleteQueueSize(session string) {
	globalManager.queueSize.DeleteLabelValues(session)
}

// UpdateActiveSessions sets the number of running live sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordPipelineDuration records a comparison view recomputation.
func RecordPipelineDuration(latencyMs float64) {
	globalManager.pipelineDuration.Observe(latencyMs)
}

// RecordPlayerFetch counts a historical player fetch (ok, not_found, error).
func RecordPlayerFetch(result string) {
	globalManager.playerFetches.WithLabelValues(result).Inc()
}

// UpdateComparisons sets the number of comparison controllers.
func UpdateComparisons(count int) {
	globalManager.comparisons.Set(float64(count))
}

// RecordStoreQueryLatency records a historical store query.
func RecordStoreQueryLatency(op string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
