// Package prometheus holds the Prometheus implementations of the metrics
// interfaces. Importing it (blank import is enough) registers the
// constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/minifold/minifold/pkg/metrics"
	"github.com/minifold/minifold/pkg/optimize"
)

func init() {
	metrics.RegisterOptimizerMetricsConstructor(newOptimizerMetrics)
}

// optimizerMetrics is the Prometheus implementation of optimize.Metrics.
type optimizerMetrics struct {
	cacheLookups      *prometheus.CounterVec
	cacheStores       prometheus.Counter
	tasks             *prometheus.CounterVec
	transformDuration prometheus.Histogram
	transformBytesIn  prometheus.Histogram
	transformBytesOut prometheus.Histogram
}

func newOptimizerMetrics() optimize.Metrics {
	reg := metrics.GetRegistry()

	return &optimizerMetrics{
		cacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "minifold_cache_lookups_total",
				Help: "Total result cache lookups by status",
			},
			[]string{"status"}, // "hit", "miss"
		),
		cacheStores: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "minifold_cache_stores_total",
				Help: "Total result cache writes",
			},
		),
		tasks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "minifold_tasks_total",
				Help: "Total finished optimization tasks by status",
			},
			[]string{"status"}, // "ok", "error", "skipped"
		),
		transformDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "minifold_transform_duration_milliseconds",
				Help: "Wall time of a single asset transform in milliseconds",
				Buckets: []float64{
					1,     // trivial assets
					5,
					10,
					50,
					100,   // typical bundle
					500,
					1000,  // large bundle
					5000,
					10000, // pathological input
				},
			},
		),
		transformBytesIn: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minifold_transform_input_bytes",
				Help:    "Distribution of transform input sizes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB .. 16MB
			},
		),
		transformBytesOut: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minifold_transform_output_bytes",
				Help:    "Distribution of transform output sizes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
	}
}

// RecordCacheLookup implements optimize.Metrics.
func (m *optimizerMetrics) RecordCacheLookup(status string) {
	m.cacheLookups.WithLabelValues(status).Inc()
}

// RecordCacheStore implements optimize.Metrics.
func (m *optimizerMetrics) RecordCacheStore() {
	m.cacheStores.Inc()
}

// RecordTask implements optimize.Metrics.
func (m *optimizerMetrics) RecordTask(status string) {
	m.tasks.WithLabelValues(status).Inc()
}

// ObserveTransform implements optimize.Metrics.
func (m *optimizerMetrics) ObserveTransform(bytesIn, bytesOut int, duration time.Duration) {
	m.transformDuration.Observe(float64(duration.Milliseconds()))
	m.transformBytesIn.Observe(float64(bytesIn))
	m.transformBytesOut.Observe(float64(bytesOut))
}
