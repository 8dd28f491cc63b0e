package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// engineMetrics is the DOMAIN STACK wiring for package middleware: a
// per-middleware-name timing histogram, complementing the plain
// chainStats counters spec §4.D step 5 requires. Like router.metrics,
// this implements prometheus.Collector directly instead of registering
// against the global DefaultRegisterer.
type engineMetrics struct {
	duration *prometheus.HistogramVec
}

func newEngineMetrics() *engineMetrics {
	return &engineMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ember",
			Subsystem: "middleware",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of each middleware invocation, by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"}),
	}
}

func (m *engineMetrics) observe(name string, d time.Duration) {
	m.duration.WithLabelValues(name).Observe(d.Seconds())
}

// Describe implements prometheus.Collector.
func (e *Engine) Describe(ch chan<- *prometheus.Desc) {
	e.metrics.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (e *Engine) Collect(ch chan<- prometheus.Metric) {
	e.metrics.duration.Collect(ch)
}
