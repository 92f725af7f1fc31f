// Package metrics provides Prometheus metrics for the mvpshare backtest engine and read API.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the backtest service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	rowBuckets       []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Backtest metrics
	seasonsEvaluated prometheus.Counter
	seasonsSkipped   *prometheus.CounterVec
	seasonPrecision  *prometheus.GaugeVec
	meanPrecision    prometheus.Gauge
	fitLatency       prometheus.Histogram
	predictLatency   prometheus.Histogram
	trainRows        prometheus.Histogram
	backtestDuration prometheus.Histogram
	backtestRuns     *prometheus.CounterVec

	// Pool metrics
	queueDepth    prometheus.Gauge
	workerActive  prometheus.Gauge
	workerCount   prometheus.Gauge
	workerErrors  prometheus.Counter
	jobsProcessed prometheus.Counter

	// Sink metrics
	rowsPersisted *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh custom
// registry and returns that registry. Call it at startup, before any metric is
// recorded or GetRegistry is handed to an HTTP handler.
func Init(opts ...Option) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
	return registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mvpshare",
		subsystem:        "backtest",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		rowBuckets:       prometheus.ExponentialBuckets(100, 2, 10),
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.seasonsEvaluated = auto.NewCounter(m.counter(
		"seasons_evaluated_total", "Total number of seasons trained, ranked and scored"))
	m.seasonsSkipped = auto.NewCounterVec(m.counter(
		"seasons_skipped_total", "Total number of seasons skipped during a backtest"), []string{"reason"})
	m.seasonPrecision = auto.NewGaugeVec(m.gauge(
		"season_precision", "Precision score of the most recent evaluation of a season"), []string{"year"})
	m.meanPrecision = auto.NewGauge(m.gauge(
		"mean_precision", "Mean precision of the most recent backtest run"))
	m.fitLatency = auto.NewHistogram(m.histogram(
		"fit_latency_milliseconds", "Model fit latency per season in milliseconds", m.histogramBuckets))
	m.predictLatency = auto.NewHistogram(m.histogram(
		"predict_latency_milliseconds", "Model predict latency per season in milliseconds", m.histogramBuckets))
	m.trainRows = auto.NewHistogram(m.histogram(
		"train_rows", "Number of training rows per evaluated season", m.rowBuckets))
	m.backtestDuration = auto.NewHistogram(m.histogram(
		"duration_milliseconds", "Wall time of a full backtest run in milliseconds",
		prometheus.ExponentialBuckets(10, 2, 14)))
	m.backtestRuns = auto.NewCounterVec(m.counter(
		"runs_total", "Total number of backtest runs by outcome"), []string{"outcome"})

	m.queueDepth = auto.NewGauge(m.gauge(
		"queue_depth", "Number of season jobs waiting in the queue"))
	m.workerActive = auto.NewGauge(m.gauge(
		"worker_active_count", "Number of workers currently evaluating a season"))
	m.workerCount = auto.NewGauge(m.gauge(
		"worker_count", "Number of workers in the pool"))
	m.workerErrors = auto.NewCounter(m.counter(
		"worker_errors_total", "Total number of jobs that failed in a worker"))
	m.jobsProcessed = auto.NewCounter(m.counter(
		"jobs_processed_total", "Total number of jobs drained by the worker pool"))

	m.rowsPersisted = auto.NewCounterVec(m.counter(
		"rows_persisted_total", "Total number of prediction rows written to a sink"), []string{"sink"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status"},
	)
	m.errorsByComponent = auto.NewCounterVec(m.counter(
		"errors_by_component_total", "Total number of errors by component and type"),
		[]string{"component", "error_type"})
}

// RecordSeasonEvaluated counts a scored season and stores its precision.
func RecordSeasonEvaluated(year int, precision float64) {
	globalManager.seasonsEvaluated.Inc()
	globalManager.seasonPrecision.WithLabelValues(strconv.Itoa(year)).Set(precision)
}

// RecordSeasonSkipped counts a season that could not be scored.
func RecordSeasonSkipped(reason string) {
	globalManager.seasonsSkipped.WithLabelValues(reason).Inc()
}

// UpdateMeanPrecision sets the mean precision of the last run.
func UpdateMeanPrecision(v float64) {
	globalManager.meanPrecision.Set(v)
}

// RecordFitLatency records model fit latency in milliseconds.
func RecordFitLatency(latencyMs float64) {
	globalManager.fitLatency.Observe(latencyMs)
}

// RecordPredictLatency records model predict latency in milliseconds.
func RecordPredictLatency(latencyMs float64) {
	globalManager.predictLatency.Observe(latencyMs)
}

// RecordTrainRows records the training set size of one season.
func RecordTrainRows(n int) {
	globalManager.trainRows.Observe(float64(n))
}

// RecordBacktestRun records the outcome and duration of a backtest.
func RecordBacktestRun(outcome string, durationMs float64) {
	globalManager.backtestRuns.WithLabelValues(outcome).Inc()
	globalManager.backtestDuration.Observe(durationMs)
}

// UpdateQueueDepth sets the current queue depth.
func UpdateQueueDepth(size int) {
	globalManager.queueDepth.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// IncWorkerActive marks a worker as busy.
func IncWorkerActive() {
	globalManager.workerActive.Inc()
}

// DecWorkerActive marks a worker as idle.
func DecWorkerActive() {
	globalManager.workerActive.Dec()
}

// RecordJobProcessed increments the drained jobs counter.
func RecordJobProcessed() {
	globalManager.jobsProcessed.Inc()
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRowsPersisted counts prediction rows written to the named sink.
func RecordRowsPersisted(sink string, n int) {
	globalManager.rowsPersisted.WithLabelValues(sink).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the Prometheus text format, the layout the
// node exporter textfile collector reads. Batch runs use it instead of /metrics.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrWriteTextfile)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
