package metrics

import "github.com/minifold/minifold/pkg/optimize"

// NewOptimizerMetrics creates a Prometheus-backed optimize.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called); a nil
// Metrics disables recording with zero overhead.
func NewOptimizerMetrics() optimize.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusOptimizerMetrics()
}

// newPrometheusOptimizerMetrics is implemented in pkg/metrics/prometheus.
// The indirection keeps this package free of a prometheus implementation
// import while the implementation imports this package for the registry.
var newPrometheusOptimizerMetrics func() optimize.Metrics

// RegisterOptimizerMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterOptimizerMetricsConstructor(constructor func() optimize.Metrics) {
	newPrometheusOptimizerMetrics = constructor
}
