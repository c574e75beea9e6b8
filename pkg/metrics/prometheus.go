// Package metrics provides Prometheus metrics for the schedule simulator.
package metrics

import (
	"fmt"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TeamStates lists the label values used by the teams gauge.
var TeamStates = []string{"pending", "enumerating", "aggregated", "failed"}

// Manager owns every simulator metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Simulation progress
	schedulesEvaluated prometheus.Counter
	teamsByState       *prometheus.GaugeVec
	teamDuration       prometheus.Histogram
	rangeLatency       prometheus.Histogram

	// Head-to-head cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Queue and workers
	queueSize      prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDequeued  prometheus.Counter
	workerActive   prometheus.Gauge
	workerFailures prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// Store
	storeWrites prometheus.Counter
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "schedluck",
		subsystem:        "simulator",
		histogramBuckets: prometheus.ExponentialBuckets(1, 4, 10),
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.schedulesEvaluated = m.counter("schedules_evaluated_total", "Opponent orderings evaluated across all teams")
	m.teamsByState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "teams", Help: "Teams per simulation state",
	}, []string{"state"})
	m.teamDuration = m.histogram("team_duration_milliseconds", "Wall time to aggregate one team")
	m.rangeLatency = m.histogram("range_latency_milliseconds", "Wall time for one worker range")

	m.cacheHits = m.counter("h2h_cache_hits_total", "Head-to-head lookups answered from cache")
	m.cacheMisses = m.counter("h2h_cache_misses_total", "Head-to-head lookups computed from scores")

	m.queueSize = m.gauge("queue_size", "Ranges waiting in the dispatch queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Ranges enqueued for workers")
	m.queueDequeued = m.counter("queue_dequeued_total", "Ranges handed to workers")
	m.workerActive = m.gauge("workers_active", "Workers currently running")
	m.workerFailures = m.counter("worker_failures_total", "Worker ranges that ended in failure")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total", Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_request_duration_milliseconds", Help: "HTTP request duration",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_total", Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.storeWrites = m.counter("store_writes_total", "Result store writes")
}

// Registry returns the registry the manager registers on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordSchedulesEvaluated adds n evaluated orderings.
func (m *Manager) RecordSchedulesEvaluated(n uint64) { m.schedulesEvaluated.Add(float64(n)) }

// UpdateTeamsByState sets the gauge for one state.
func (m *Manager) UpdateTeamsByState(state string, n int) error {
	if !slices.Contains(TeamStates, state) {
		return fmt.Errorf("%w: %s", ErrUnknownState, state)
	}
	m.teamsByState.WithLabelValues(state).Set(float64(n))
	return nil
}

// RecordTeamDuration observes a team's aggregation time.
func (m *Manager) RecordTeamDuration(ms float64) { m.teamDuration.Observe(ms) }

// RecordRangeLatency observes one worker range.
func (m *Manager) RecordRangeLatency(ms float64) { m.rangeLatency.Observe(ms) }

// RecordCacheStats adds resolver cache hits and misses.
func (m *Manager) RecordCacheStats(hits, misses uint64) {
	m.cacheHits.Add(float64(hits))
	m.cacheMisses.Add(float64(misses))
}

// UpdateQueueSize sets the current queue depth.
func (m *Manager) UpdateQueueSize(n int) { m.queueSize.Set(float64(n)) }

// RecordQueueEnqueue counts an enqueued range.
func (m *Manager) RecordQueueEnqueue() { m.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued range.
func (m *Manager) RecordQueueDequeue() { m.queueDequeued.Inc() }

// AddWorkerActive moves the active worker gauge by delta.
func (m *Manager) AddWorkerActive(delta int) { m.workerActive.Add(float64(delta)) }

// RecordWorkerFailure counts a failed range.
func (m *Manager) RecordWorkerFailure() { m.workerFailures.Inc() }

// RecordHTTPRequest counts one request.
func (m *Manager) RecordHTTPRequest(endpoint, method, status string) {
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// RecordErrorByComponent counts an error.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordStoreWrite counts a store write.
func (m *Manager) RecordStoreWrite() { m.storeWrites.Inc() }

// Package-level helpers delegating to the global manager.

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry { return globalManager.Registry() }

func RecordSchedulesEvaluated(n uint64) { globalManager.RecordSchedulesEvaluated(n) }

func UpdateTeamsByState(state string, n int) error { return globalManager.UpdateTeamsByState(state, n) }

func RecordTeamDuration(ms float64) { globalManager.RecordTeamDuration(ms) }

func RecordRangeLatency(ms float64) { globalManager.RecordRangeLatency(ms) }

func RecordCacheStats(hits, misses uint64) { globalManager.RecordCacheStats(hits, misses) }

func UpdateQueueSize(n int) { globalManager.UpdateQueueSize(n) }

func RecordQueueEnqueue() { globalManager.RecordQueueEnqueue() }

func RecordQueueDequeue() { globalManager.RecordQueueDequeue() }

func AddWorkerActive(delta int) { globalManager.AddWorkerActive(delta) }

func RecordWorkerFailure() { globalManager.RecordWorkerFailure() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.RecordHTTPRequest(endpoint, method, status)
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, status, ms)
}

func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

func RecordStoreWrite() { globalManager.RecordStoreWrite() }
