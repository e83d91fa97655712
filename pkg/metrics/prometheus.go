// Package metrics provides Prometheus metrics for the duels record service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	rebuildBuckets []float64
	registry       prometheus.Registerer

	// Record store
	usersCached  prometheus.Gauge
	userLoads    *prometheus.CounterVec
	userSaves    *prometheus.CounterVec
	usersCreated prometheus.Counter
	matches      prometheus.Counter

	// Leaderboards
	leaderboardRebuilds        *prometheus.CounterVec
	leaderboardRebuildDuration *prometheus.HistogramVec
	leaderboardErrors          *prometheus.CounterVec
	leaderboardKits            prometheus.Gauge

	// Lifecycle
	moduleLoads *prometheus.CounterVec
	reloads     *prometheus.CounterVec

	// Task queues and workers
	queueSize       *prometheus.GaugeVec
	queueCapacity   *prometheus.GaugeVec
	queueEnqueued   *prometheus.CounterVec
	queueDequeued   *prometheus.CounterVec
	queueRejected   *prometheus.CounterVec
	workerActive    *prometheus.GaugeVec
	taskLatency     *prometheus.HistogramVec
	taskPanics      *prometheus.CounterVec
	repeatingActive prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "duels",
		subsystem:      "records",
		latencyBuckets: defaultLatencyBuckets,
		rebuildBuckets: defaultRebuildBuckets,
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.usersCached = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_cached",
		Help:      "Number of player records currently held in memory",
	})
	m.userLoads = m.counterVec("user_loads_total", "Player record loads by result", "result")
	m.userSaves = m.counterVec("user_saves_total", "Player record saves by result", "result")
	m.usersCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_created_total",
		Help:      "Number of records created for first-time players",
	})
	m.matches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_recorded_total",
		Help:      "Number of match results applied to player records",
	})

	m.leaderboardRebuilds = m.counterVec("leaderboard_rebuilds_total", "Leaderboard snapshot rebuilds by metric", "metric")
	m.leaderboardRebuildDuration = m.histogramVec("leaderboard_rebuild_duration_milliseconds", "Leaderboard snapshot rebuild duration", m.rebuildBuckets, "metric")
	m.leaderboardErrors = m.counterVec("leaderboard_errors_total", "Failed leaderboard rebuilds by metric", "metric")
	m.leaderboardKits = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_kits",
		Help:      "Number of per-kit rating leaderboards currently published",
	})

	m.moduleLoads = m.counterVec("module_loads_total", "Module load and unload operations by result", "module", "op", "result")
	m.reloads = m.counterVec("reloads_total", "Reload requests by scope and result", "scope", "result")

	m.queueSize = m.gaugeVec("queue_size", "Current number of queued tasks", "queue")
	m.queueCapacity = m.gaugeVec("queue_capacity", "Maximum number of queued tasks", "queue")
	m.queueEnqueued = m.counterVec("queue_enqueued_total", "Tasks accepted by a queue", "queue")
	m.queueDequeued = m.counterVec("queue_dequeued_total", "Tasks handed to workers", "queue")
	m.queueRejected = m.counterVec("queue_rejected_total", "Tasks rejected by a queue", "queue", "reason")
	m.workerActive = m.gaugeVec("worker_active_count", "Number of running workers", "pool")
	m.taskLatency = m.histogramVec("task_latency_milliseconds", "Task execution latency", m.latencyBuckets, "pool")
	m.taskPanics = m.counterVec("task_panics_total", "Tasks that panicked", "pool")
	m.repeatingActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repeating_tasks",
		Help:      "Number of scheduled repeating tasks",
	})

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", m.latencyBuckets, "component", "error_type")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Record store.

// UpdateUsersCached sets the number of cached player records.
func UpdateUsersCached(count int) {
	globalManager.usersCached.Set(float64(count))
}

// RecordUserLoad counts a record load with the given result
// (loaded, created, corrupt, error, bootstrap).
func RecordUserLoad(result string) {
	globalManager.userLoads.WithLabelValues(result).Inc()
}

// RecordUserSave counts a record save with the given result (ok, error).
func RecordUserSave(result string) {
	globalManager.userSaves.WithLabelValues(result).Inc()
}

// RecordUserCreated counts a record created for a first-time player.
func RecordUserCreated() {
	globalManager.usersCreated.Inc()
}

// RecordMatch counts an applied match result.
func RecordMatch() {
	globalManager.matches.Inc()
}

// Leaderboards.

// RecordLeaderboardRebuild records a snapshot rebuild for a metric.
func RecordLeaderboardRebuild(metric string, durationMs float64) {
	globalManager.leaderboardRebuilds.WithLabelValues(metric).Inc()
	globalManager.leaderboardRebuildDuration.WithLabelValues(metric).Observe(durationMs)
}

// RecordLeaderboardError counts a failed snapshot rebuild for a metric.
func RecordLeaderboardError(metric string) {
	globalManager.leaderboardErrors.WithLabelValues(metric).Inc()
}

// UpdateLeaderboardKits sets the number of published per-kit leaderboards.
func UpdateLeaderboardKits(count int) {
	globalManager.leaderboardKits.Set(float64(count))
}

// Lifecycle.

// RecordModuleOp records a module load or unload.
func RecordModuleOp(module, op, result string) {
	globalManager.moduleLoads.WithLabelValues(module, op, result).Inc()
}

// RecordReload records a reload request; scope is "all" or a module name.
func RecordReload(scope, result string) {
	globalManager.reloads.WithLabelValues(scope, result).Inc()
}

// Queues and workers.

// UpdateQueueSize sets the current size of a queue.
func UpdateQueueSize(queue string, size int) {
	globalManager.queueSize.WithLabelValues(queue).Set(float64(size))
}

// UpdateQueueCapacity sets the capacity of a queue.
func UpdateQueueCapacity(queue string, capacity int) {
	globalManager.queueCapacity.WithLabelValues(queue).Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted task.
func RecordQueueEnqueue(queue string) {
	globalManager.queueEnqueued.WithLabelValues(queue).Inc()
}

// RecordQueueDequeue counts a task handed to a worker.
func RecordQueueDequeue(queue string) {
	globalManager.queueDequeued.WithLabelValues(queue).Inc()
}

// RecordQueueRejected counts a rejected task.
func RecordQueueRejected(queue, reason string) {
	globalManager.queueRejected.WithLabelValues(queue, reason).Inc()
}

// UpdateWorkerActiveCount sets the number of running workers in a pool.
func UpdateWorkerActiveCount(pool string, count int) {
	globalManager.workerActive.WithLabelValues(pool).Set(float64(count))
}

// RecordTaskLatency records how long a task ran.
func RecordTaskLatency(pool string, latencyMs float64) {
	globalManager.taskLatency.WithLabelValues(pool).Observe(latencyMs)
}

// RecordTaskPanic counts a task that panicked.
func RecordTaskPanic(pool string) {
	globalManager.taskPanics.WithLabelValues(pool).Inc()
}

// UpdateRepeatingTasks sets the number of scheduled repeating tasks.
func UpdateRepeatingTasks(count int) {
	globalManager.repeatingActive.Set(float64(count))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
