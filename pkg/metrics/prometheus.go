// Package metrics provides Prometheus metrics for the gvera request shim.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultLatencyBuckets spans 1ms to about 2s for the millisecond histograms.
func defaultLatencyBuckets() []float64 { return prometheus.ExponentialBuckets(1, 2, 12) }

// Label values for parameter lookups.
const (
	SourceOverlay = "overlay"
	SourceQuery   = "query"
	SourceForm    = "form"
	SourceStream  = "stream"
)

// Label values for the Authorization header lookup chain.
const (
	AuthSourceVar    = "var"
	AuthSourceProxy  = "proxy"
	AuthSourceHeader = "header"
	AuthSourceNone   = "none"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Request shim metrics
	parameterLookups    *prometheus.CounterVec
	parameterNotFound   *prometheus.CounterVec
	authorizationSource *prometheus.CounterVec
	requestBodyBytes    prometheus.Histogram

	// Collaborator metrics
	fileSaves         *prometheus.CounterVec
	fileSaveLatency   prometheus.Histogram
	validationResults *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// global pairs the package-level manager with the registry it registers on.
type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[global] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Init()
}

// Init replaces the global manager with one built from opts. Collectors go on
// a fresh custom registry, so default Go and process metrics are never
// exported; the system gauges cover memory and goroutines instead.
// Handlers built from an earlier GetRegistry keep serving the old registry.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append(append([]Option{}, opts...), WithPrometheusRegistry(registry))
	current.Store(&global{manager: NewManager(all...), registry: registry})
}

func globalManager() *Manager { return current.Load().manager }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gvera",
		subsystem:        "shim",
		histogramBuckets: defaultLatencyBuckets(),
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
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

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.parameterLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("parameter_lookups_total"),
		Help:        "Parameter lookups by the source that answered them",
		ConstLabels: constLabels,
	}, []string{"source"})

	m.parameterNotFound = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("parameter_not_found_total"),
		Help:        "Parameter lookups that found no value",
		ConstLabels: constLabels,
	}, []string{"source"})

	m.authorizationSource = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("authorization_lookups_total"),
		Help:        "Authorization header lookups by the field that answered them",
		ConstLabels: constLabels,
	}, []string{"source"})

	m.requestBodyBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("request_body_bytes"),
		Help:        "Size of raw request bodies read for stream verbs",
		Buckets:     prometheus.ExponentialBuckets(64, 4, 8),
		ConstLabels: constLabels,
	})

	m.fileSaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("file_saves_total"),
		Help:        "Uploaded files moved to the file system, by result",
		ConstLabels: constLabels,
	}, []string{"result"})

	m.fileSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("file_save_latency_milliseconds"),
		Help:        "Latency of moving an uploaded file to its directory",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.validationResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("validations_total"),
		Help:        "Request validations by caller key and result",
		ConstLabels: constLabels,
	}, []string{"caller", "result"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})
}

// RecordParameterLookup counts a lookup answered by source.
func (m *Manager) RecordParameterLookup(source string) {
	if m.enabled {
		m.parameterLookups.WithLabelValues(source).Inc()
	}
}

// RecordParameterNotFound counts a lookup in source that found nothing.
func (m *Manager) RecordParameterNotFound(source string) {
	if m.enabled {
		m.parameterNotFound.WithLabelValues(source).Inc()
	}
}

// RecordAuthorizationSource counts which field answered an Authorization lookup.
func (m *Manager) RecordAuthorizationSource(source string) {
	if m.enabled {
		m.authorizationSource.WithLabelValues(source).Inc()
	}
}

// RecordRequestBodyBytes observes the size of a raw stream body.
func (m *Manager) RecordRequestBodyBytes(n int) {
	if m.enabled {
		m.requestBodyBytes.Observe(float64(n))
	}
}

// RecordFileSave counts a file move with its result and latency.
func (m *Manager) RecordFileSave(result string, latencyMs float64) {
	if m.enabled {
		m.fileSaves.WithLabelValues(result).Inc()
		m.fileSaveLatency.Observe(latencyMs)
	}
}

// RecordValidation counts a validation outcome for a caller key.
func (m *Manager) RecordValidation(caller, result string) {
	if m.enabled {
		m.validationResults.WithLabelValues(caller, result).Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordError records an HTTP error by type, severity and endpoint.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystem sets memory and goroutine gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(memBytes))
		m.systemGoroutineCount.Set(float64(goroutines))
	}
}

// Package-level helpers backed by the global manager.

// RecordParameterLookup counts a lookup answered by source.
func RecordParameterLookup(source string) { globalManager().RecordParameterLookup(source) }

// RecordParameterNotFound counts a lookup in source that found nothing.
func RecordParameterNotFound(source string) { globalManager().RecordParameterNotFound(source) }

// RecordAuthorizationSource counts which field answered an Authorization lookup.
func RecordAuthorizationSource(source string) { globalManager().RecordAuthorizationSource(source) }

// RecordRequestBodyBytes observes the size of a raw stream body.
func RecordRequestBodyBytes(n int) { globalManager().RecordRequestBodyBytes(n) }

// RecordFileSave counts a file move with its result and latency.
func RecordFileSave(result string, latencyMs float64) {
	globalManager().RecordFileSave(result, latencyMs)
}

// RecordValidation counts a validation outcome for a caller key.
func RecordValidation(caller, result string) { globalManager().RecordValidation(caller, result) }

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager().RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an HTTP error by type, severity and endpoint.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager().RecordError(endpoint, method, errorType, severity)
}

// UpdateSystem sets memory and goroutine gauges.
func UpdateSystem(memBytes uint64, goroutines int) {
	globalManager().UpdateSystem(memBytes, goroutines)
}

// RefreshInterval returns how often gauges should be refreshed.
func RefreshInterval() time.Duration { return globalManager().refreshInterval }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
