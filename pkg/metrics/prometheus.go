// Package metrics provides Prometheus metrics for the matchload service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// Datasets
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration *prometheus.HistogramVec
	datasetRows         *prometheus.GaugeVec
	refreshRuns         *prometheus.CounterVec

	// Cache
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec

	// Load calendar
	cycleBuilds        *prometheus.CounterVec
	cycleBuildDuration prometheus.Histogram

	// Upstreams
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Analysis queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueRejected           *prometheus.CounterVec
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	analysisJobs            *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchload",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
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
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of failed operations in milliseconds", "component", "error_type")

	m.datasetLoads = m.counterVec("dataset_loads_total", "Dataset loads from disk by source and result", "source", "result")
	m.datasetLoadDuration = m.histogramVec("dataset_load_duration_milliseconds", "Dataset load duration in milliseconds", "source")
	m.datasetRows = m.gaugeVec("dataset_rows", "Rows in the most recent load of a dataset", "source")
	m.refreshRuns = m.counterVec("dataset_refresh_runs_total", "Scheduled dataset refresh runs by result", "result")

	m.cacheHits = m.counterVec("cache_hits_total", "Cache hits by cache name", "cache")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache misses by cache name", "cache")
	m.cacheEvictions = m.counterVec("cache_evictions_total", "Cache evictions by cache name and reason", "cache", "reason")
	m.cacheEntries = m.gaugeVec("cache_entries", "Current number of entries per cache", "cache")

	m.cycleBuilds = m.counterVec("cycle_builds_total", "Load-calendar aggregations by outcome", "outcome")
	m.cycleBuildDuration = m.histogram("cycle_build_duration_milliseconds", "Load-calendar aggregation duration in milliseconds")

	m.upstreamRequests = m.counterVec("upstream_requests_total", "Upstream HTTP calls by upstream and result", "upstream", "result")
	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds", "Upstream HTTP latency in milliseconds", "upstream")

	m.queueSize = m.gauge("analysis_queue_size", "Current number of queued analysis jobs")
	m.queueCapacity = m.gauge("analysis_queue_capacity", "Capacity of the analysis queue")
	m.queueEnqueued = m.counter("analysis_queue_enqueued_total", "Analysis jobs accepted by the queue")
	m.queueRejected = m.counterVec("analysis_queue_rejected_total", "Analysis jobs rejected by the queue", "reason")
	m.workerActiveCount = m.gauge("analysis_workers", "Number of analysis workers")
	m.workerProcessingLatency = m.histogram("analysis_worker_latency_milliseconds", "Analysis job processing latency in milliseconds")
	m.workerErrors = m.counter("analysis_worker_errors_total", "Analysis jobs that failed")
	m.analysisJobs = m.counterVec("analysis_jobs_total", "Analysis jobs by mode and final state", "mode", "state")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// Manager-level recorders. The package-level functions below delegate to the
// global manager.

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

func (m *Manager) RecordDatasetLoad(source string, rows int, durationMs float64, err error) {
	if !m.enabled {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.datasetRows.WithLabelValues(source).Set(float64(rows))
	}
	m.datasetLoads.WithLabelValues(source, result).Inc()
	m.datasetLoadDuration.WithLabelValues(source).Observe(durationMs)
}

func (m *Manager) RecordRefreshRun(err error) {
	if !m.enabled {
		return
	}
	if err != nil {
		m.refreshRuns.WithLabelValues("error").Inc()
		return
	}
	m.refreshRuns.WithLabelValues("ok").Inc()
}

func (m *Manager) RecordCacheHit(cache string) {
	if m.enabled {
		m.cacheHits.WithLabelValues(cache).Inc()
	}
}

func (m *Manager) RecordCacheMiss(cache string) {
	if m.enabled {
		m.cacheMisses.WithLabelValues(cache).Inc()
	}
}

func (m *Manager) RecordCacheEviction(cache, reason string) {
	if m.enabled {
		m.cacheEvictions.WithLabelValues(cache, reason).Inc()
	}
}

func (m *Manager) UpdateCacheEntries(cache string, n int) {
	if m.enabled {
		m.cacheEntries.WithLabelValues(cache).Set(float64(n))
	}
}

func (m *Manager) RecordCycleBuild(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.cycleBuilds.WithLabelValues(outcome).Inc()
	m.cycleBuildDuration.Observe(durationMs)
}

func (m *Manager) RecordUpstream(upstream string, durationMs float64, err error) {
	if !m.enabled {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamRequests.WithLabelValues(upstream, result).Inc()
	m.upstreamLatency.WithLabelValues(upstream).Observe(durationMs)
}

func (m *Manager) UpdateQueueSize(size int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
	}
}

func (m *Manager) UpdateQueueCapacity(capacity int) {
	if m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

func (m *Manager) RecordQueueEnqueue() {
	if m.enabled {
		m.queueEnqueued.Inc()
	}
}

func (m *Manager) RecordQueueRejected(reason string) {
	if m.enabled {
		m.queueRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Manager) UpdateWorkerCount(count int) {
	if m.enabled {
		m.workerActiveCount.Set(float64(count))
	}
}

func (m *Manager) RecordWorkerProcessingLatency(latencyMs float64) {
	if m.enabled {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

func (m *Manager) RecordWorkerError() {
	if m.enabled {
		m.workerErrors.Inc()
	}
}

func (m *Manager) RecordAnalysisJob(mode, state string) {
	if m.enabled {
		m.analysisJobs.WithLabelValues(mode, state).Inc()
	}
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint increments the error counter for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.RecordErrorLatency(component, errorType, latencyMs)
}

// RecordDatasetLoad records a dataset read from disk.
func RecordDatasetLoad(source string, rows int, durationMs float64, err error) {
	globalManager.RecordDatasetLoad(source, rows, durationMs, err)
}

// RecordRefreshRun records a scheduled refresh.
func RecordRefreshRun(err error) { globalManager.RecordRefreshRun(err) }

// RecordCacheHit records a cache hit.
func RecordCacheHit(cache string) { globalManager.RecordCacheHit(cache) }

// RecordCacheMiss records a cache miss.
func RecordCacheMiss(cache string) { globalManager.RecordCacheMiss(cache) }

// RecordCacheEviction records an eviction, reason is "expired" or "capacity".
func RecordCacheEviction(cache, reason string) { globalManager.RecordCacheEviction(cache, reason) }

// UpdateCacheEntries sets the entry gauge of a cache.
func UpdateCacheEntries(cache string, n int) { globalManager.UpdateCacheEntries(cache, n) }

// RecordCycleBuild records one load-calendar aggregation.
func RecordCycleBuild(outcome string, durationMs float64) {
	globalManager.RecordCycleBuild(outcome, durationMs)
}

// RecordUpstream records one upstream HTTP call.
func RecordUpstream(upstream string, durationMs float64, err error) {
	globalManager.RecordUpstream(upstream, durationMs, err)
}

// UpdateQueueSize sets the analysis queue length.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// UpdateQueueCapacity sets the analysis queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.UpdateQueueCapacity(capacity) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.RecordQueueEnqueue() }

// RecordQueueRejected counts a rejected job.
func RecordQueueRejected(reason string) { globalManager.RecordQueueRejected(reason) }

// UpdateWorkerCount sets the number of analysis workers.
func UpdateWorkerCount(count int) { globalManager.UpdateWorkerCount(count) }

// RecordWorkerProcessingLatency observes a job's processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.RecordWorkerProcessingLatency(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.RecordWorkerError() }

// RecordAnalysisJob counts a job reaching a final state.
func RecordAnalysisJob(mode, state string) { globalManager.RecordAnalysisJob(mode, state) }

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// Configure rebuilds the global manager with opts on a fresh registry. Call it
// at startup, before anything records or scrapes.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// GetRegistry returns the registry scraped by /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
