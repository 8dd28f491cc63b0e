package router

import "github.com/prometheus/client_golang/prometheus"

// metrics are the DOMAIN STACK wiring for package router: per spec this
// package has no observability requirement of its own, but the ambient
// stack (SPEC_FULL.md §1.1) carries metrics throughout. Router implements
// prometheus.Collector directly rather than registering itself against the
// global DefaultRegisterer, so embedding applications choose whether (and
// to which registry) to expose it — and so constructing more than one
// Router in a test never panics on duplicate registration.
type metrics struct {
	matches *prometheus.CounterVec
	routes  prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "router",
			Name:      "matches_total",
			Help:      "Count of Match calls by resulting status_hint (200, 404, 405).",
		}, []string{"status_hint"}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ember",
			Subsystem: "router",
			Name:      "routes_registered",
			Help:      "Number of routes currently present in the route index.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (r *Router) Describe(ch chan<- *prometheus.Desc) {
	r.metrics.matches.Describe(ch)
	r.metrics.routes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (r *Router) Collect(ch chan<- prometheus.Metric) {
	r.mu.RLock()
	r.metrics.routes.Set(float64(len(r.routeIndex)))
	r.mu.RUnlock()
	r.metrics.matches.Collect(ch)
	r.metrics.routes.Collect(ch)
}
