// Package metrics provides Prometheus metrics for the casebook service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Portfolio state
	clientCount  prometheus.Gauge
	partnerCount prometheus.Gauge

	// Intake pipeline
	intakeProcessed prometheus.Counter
	intakeDuplicate prometheus.Counter
	intakeErrors    prometheus.Counter
	intakeHighRisk  prometheus.Counter
	intakeLatency   prometheus.Histogram
	importRows      *prometheus.CounterVec

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejects  *prometheus.CounterVec
	workerCount   prometheus.Gauge

	// Scenario engine
	scenarioEvaluations *prometheus.CounterVec
	scenarioLatency     prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "casebook",
		subsystem:        "portfolio",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	factory := promauto.With(m.registry)

	m.clientCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "clients_tracked",
		Help: "Number of clients currently tracked in the portfolio.",
	})
	m.partnerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "partners_tracked",
		Help: "Number of partners currently tracked in the portfolio.",
	})

	m.intakeProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "intake_processed_total",
		Help: "Client records stored by the intake workers.",
	})
	m.intakeDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "intake_duplicate_total",
		Help: "Client records rejected as duplicates.",
	})
	m.intakeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "intake_errors_total",
		Help: "Client records that failed to store.",
	})
	m.intakeHighRisk = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "intake_high_risk_total",
		Help: "Client records arriving with succession risk at or above the attention threshold.",
	})
	m.intakeLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "intake_latency_ms",
		Help:    "Per-record intake processing latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.importRows = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "import_rows_total",
		Help: "CSV import rows by outcome.",
	}, []string{"outcome"})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Records currently queued for intake.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured intake queue capacity.",
	})
	m.queueRejects = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_rejects_total",
		Help: "Enqueue rejections by reason.",
	}, []string{"reason"})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of intake workers.",
	})

	m.scenarioEvaluations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scenario_evaluations_total",
		Help: "Scenario evaluations by policy.",
	}, []string{"policy"})
	m.scenarioLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "scenario_latency_ms",
		Help:    "Full scenario evaluation latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_bytes",
		Help: "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Number of goroutines.",
	})
}

// GetRegistry returns the registry backing the global manager, for
// promhttp exposure.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func UpdateClientCount(n int)  { globalManager.clientCount.Set(float64(n)) }
func UpdatePartnerCount(n int) { globalManager.partnerCount.Set(float64(n)) }

func RecordIntakeProcessed()         { globalManager.intakeProcessed.Inc() }
func RecordIntakeDuplicate()         { globalManager.intakeDuplicate.Inc() }
func RecordIntakeError()             { globalManager.intakeErrors.Inc() }
func RecordHighRiskIntake()          { globalManager.intakeHighRisk.Inc() }
func RecordIntakeLatency(ms float64) { globalManager.intakeLatency.Observe(ms) }

// RecordImportRow counts one CSV row by outcome: accepted, duplicate, or
// rejected.
func RecordImportRow(outcome string) {
	globalManager.importRows.WithLabelValues(outcome).Inc()
}

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func UpdateWorkerCount(n int)   { globalManager.workerCount.Set(float64(n)) }

func RecordQueueReject(reason string) {
	globalManager.queueRejects.WithLabelValues(reason).Inc()
}

func RecordScenarioEvaluation(policy string) {
	globalManager.scenarioEvaluations.WithLabelValues(policy).Inc()
}

func RecordScenarioLatency(ms float64) { globalManager.scenarioLatency.Observe(ms) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
