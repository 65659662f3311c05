package metrics

import (
	"maps"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered. Options
// are fed from the metrics config section, so empty or unusable values keep
// the defaults instead of failing registration.
type Option func(*Manager)

// WithNamespace overrides the "gvera" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "shim" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem = strings.TrimSpace(subsystem); subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the millisecond latency buckets. A list that is
// not strictly increasing is ignored; prometheus panics on it.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return
			}
		}
		m.histogramBuckets = append([]float64(nil), buckets...)
	}
}

// WithMetricsEnabled turns recording on or off. Collectors are registered either way.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the service refreshes system gauges.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels, e.g. region or instance, to
// every collector. The map is copied.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithMetricPrefix prepends prefix_ to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix = strings.Trim(prefix, " _"); prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithPrometheusRegistry registers collectors on registry. Init always
// passes a fresh one; NewManager alone falls back to the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
