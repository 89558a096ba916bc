// Package metrics provides Prometheus metrics for the island timeline synchronizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// idleSegment is the active segment gauge value when nothing is active.
const idleSegment = -1

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Synchronization core
	samples         prometheus.Counter
	progress        prometheus.Gauge
	transitions     *prometheus.CounterVec
	skippedSegments prometheus.Counter
	activeSegment   prometheus.Gauge
	dispatchLatency prometheus.Histogram
	ticks           prometheus.Counter

	// Sessions and readiness
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	assetLoads     prometheus.Counter
	assetsReady    prometheus.Counter

	// Sample queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Transport
	wsMessages          *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "isles",
		subsystem:        "sync",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.samples = auto.NewCounter(m.counterOpts("scroll_samples_total", "Total number of scroll samples applied"))
	m.progress = auto.NewGauge(m.gaugeOpts("scroll_progress", "Normalized progress of the latest sample"))
	m.transitions = auto.NewCounterVec(m.counterOpts("transitions_total", "Segment transitions by kind (enter, exit)"), []string{"kind"})
	m.skippedSegments = auto.NewCounter(m.counterOpts("skipped_segments_total", "Segments jumped over in a single sample"))
	m.activeSegment = auto.NewGauge(m.gaugeOpts("active_segment", "Index of the most recently active segment, -1 when idle"))
	m.dispatchLatency = auto.NewHistogram(m.histogramOpts("dispatch_latency_milliseconds", "Time spent forwarding one cycle to collaborators"))
	m.ticks = auto.NewCounter(m.counterOpts("render_ticks_total", "Total number of camera pose updates"))

	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active", "Number of connected sessions"))
	m.sessionsTotal = auto.NewCounter(m.counterOpts("sessions_total", "Total number of sessions opened"))
	m.assetLoads = auto.NewCounter(m.counterOpts("asset_loads_total", "Total number of asset load completions reported"))
	m.assetsReady = auto.NewCounter(m.counterOpts("assets_ready_total", "Total number of readiness barriers released"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued scroll samples"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the scroll sample queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of samples enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of samples dequeued"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueues by reason"), []string{"reason"})

	m.wsMessages = auto.NewCounterVec(m.counterOpts("ws_messages_total", "WebSocket messages by direction and type"), []string{"direction", "type"})
	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// RecordSample counts one applied scroll sample and its progress.
func RecordSample(progress float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.samples.Inc()
	globalManager.progress.Set(progress)
}

// RecordTransition counts an enter or exit.
func RecordTransition(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.transitions.WithLabelValues(kind).Inc()
}

// RecordSkipped adds n skipped segments.
func RecordSkipped(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.skippedSegments.Add(float64(n))
}

// UpdateActiveSegment sets the active segment gauge; ok=false means idle.
func UpdateActiveSegment(index int, ok bool) {
	if !globalManager.enabled {
		return
	}
	if !ok {
		index = idleSegment
	}
	globalManager.activeSegment.Set(float64(index))
}

// RecordDispatchLatency records dispatch time in milliseconds.
func RecordDispatchLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordTick counts one camera pose update.
func RecordTick() {
	if !globalManager.enabled {
		return
	}
	globalManager.ticks.Inc()
}

// RecordSessionOpened increments the session gauges.
func RecordSessionOpened() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsActive.Inc()
	globalManager.sessionsTotal.Inc()
}

// RecordSessionClosed decrements the active session gauge.
func RecordSessionClosed() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsActive.Dec()
}

// RecordAssetLoaded counts one asset load completion.
func RecordAssetLoaded() {
	if !globalManager.enabled {
		return
	}
	globalManager.assetLoads.Inc()
}

// RecordAssetsReady counts one released readiness barrier.
func RecordAssetsReady() {
	if !globalManager.enabled {
		return
	}
	globalManager.assetsReady.Inc()
}

// UpdateQueueSize sets the queue size and utilization gauges.
func UpdateQueueSize(size, capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted sample.
func RecordQueueEnqueue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a consumed sample.
func RecordQueueDequeue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected sample.
func RecordQueueEnqueueError(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordWSMessage counts one WebSocket message ("in" or "out").
func RecordWSMessage(direction, msgType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.wsMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError counts an error by component and type.
func RecordError(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
