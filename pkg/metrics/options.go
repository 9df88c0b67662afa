package metrics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace sets the first metric name segment ("shoplist" by default).
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the second metric name segment ("api" by default).
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem = strings.TrimSpace(subsystem); subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricPrefix inserts prefix between the subsystem and each metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix = strings.Trim(prefix, "_ "); prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithHistogramBuckets sets the millisecond buckets of every latency
// histogram. The slice is copied and sorted; an empty slice is ignored.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.histogramBuckets = slices.Compact(b)
	}
}

// WithMetricsEnabled turns every recorder into a no-op when false.
// Collectors are still registered so /metrics keeps its shape.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the item and runtime gauges are
// refreshed. Non-positive values keep the default.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels to every series, e.g. the
// deployment environment. Entries with an empty name are dropped.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		merged := maps.Clone(m.customLabels)
		if merged == nil {
			merged = make(map[string]string, len(labels))
		}
		for k, v := range labels {
			if k = strings.TrimSpace(k); k != "" {
				merged[k] = v
			}
		}
		m.customLabels = merged
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of
// the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
