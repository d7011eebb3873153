// Package metrics provides Prometheus metrics for the cupstats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregation outcomes.
const (
	OutcomeTable  = "table"
	OutcomeNoData = "no_data"
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset
	datasetRows         *prometheus.GaugeVec
	datasetLoadDuration prometheus.Histogram

	// Aggregation and prediction
	aggregations       *prometheus.CounterVec
	predictions        *prometheus.CounterVec
	predictionLatency  *prometheus.HistogramVec
	predictionForecast *prometheus.GaugeVec

	// Presenters
	exports         *prometheus.CounterVec
	exportLatency   *prometheus.HistogramVec
	exportQueueSize prometheus.Gauge
	exportWorkers   prometheus.Gauge
	mcpToolCalls    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cupstats",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.datasetRows = m.gaugeVec("dataset_rows", "Rows kept per dataset after load-time cleaning", "dataset")
	m.datasetLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_load_duration_milliseconds",
		Help:        "Time spent loading and cleaning the three datasets",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})

	m.aggregations = m.counterVec("aggregations_total", "Chart tables computed by chart and outcome", "chart", "outcome")
	m.predictions = m.counterVec("predictions_total", "Trend predictions by type and status", "type", "status")
	m.predictionLatency = m.histogramVec("prediction_latency_milliseconds", "Trend prediction latency in milliseconds", "type")
	m.predictionForecast = m.gaugeVec("prediction_forecast", "Last forecast value in the model's scaled units", "type")

	m.exports = m.counterVec("exports_total", "Rendered charts and reports by kind and outcome", "kind", "outcome")
	m.exportLatency = m.histogramVec("export_latency_milliseconds", "Time spent rendering or writing one export job", "kind")
	m.exportQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_queue_size",
		Help:        "Export jobs waiting for a worker",
		ConstLabels: m.constLabels,
	})
	m.exportWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_workers",
		Help:        "Export workers currently running",
		ConstLabels: m.constLabels,
	})
	m.mcpToolCalls = m.counterVec("mcp_tool_calls_total", "MCP tool invocations by tool and outcome", "tool", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type",
		"endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Heap bytes allocated by the process",
		ConstLabels: m.constLabels,
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})
}

// Dataset Metrics Functions.

// UpdateDatasetRows sets the row count of a loaded dataset.
func UpdateDatasetRows(dataset string, rows int) {
	globalManager.datasetRows.WithLabelValues(dataset).Set(float64(rows))
}

// RecordDatasetLoadDuration records how long the loader took.
func RecordDatasetLoadDuration(latencyMs float64) {
	globalManager.datasetLoadDuration.Observe(latencyMs)
}

// Aggregation and Prediction Functions.

// RecordAggregation counts a chart computation and whether it produced data.
func RecordAggregation(chart string, noData bool) {
	outcome := OutcomeTable
	if noData {
		outcome = OutcomeNoData
	}
	globalManager.aggregations.WithLabelValues(chart, outcome).Inc()
}

// RecordPrediction counts a trend prediction and observes its latency.
func RecordPrediction(predictionType, status string, latencyMs float64) {
	globalManager.predictions.WithLabelValues(predictionType, status).Inc()
	globalManager.predictionLatency.WithLabelValues(predictionType).Observe(latencyMs)
}

// UpdatePredictionForecast stores the latest forecast for a prediction type.
func UpdatePredictionForecast(predictionType string, value float64) {
	globalManager.predictionForecast.WithLabelValues(predictionType).Set(value)
}

// Presenter Functions.

// RecordExport counts a rendered chart or written report.
func RecordExport(kind string, ok bool) {
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	globalManager.exports.WithLabelValues(kind, outcome).Inc()
}

// RecordExportLatency observes how long one export job took.
func RecordExportLatency(kind string, latencyMs float64) {
	globalManager.exportLatency.WithLabelValues(kind).Observe(latencyMs)
}

// UpdateExportQueueSize sets the number of queued export jobs.
func UpdateExportQueueSize(size int) {
	globalManager.exportQueueSize.Set(float64(size))
}

// UpdateExportWorkers sets the number of running export workers.
func UpdateExportWorkers(count int) {
	globalManager.exportWorkers.Set(float64(count))
}

// RecordMCPToolCall counts an MCP tool invocation.
func RecordMCPToolCall(tool string, ok bool) {
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	globalManager.mcpToolCalls.WithLabelValues(tool, outcome).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System Performance Metrics Functions.

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
