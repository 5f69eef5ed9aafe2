// Package metrics provides Prometheus metrics for tour map resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tourmap"

// Metrics groups the counters recorded while resolving tour locations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheErrors     *prometheus.CounterVec
	geocodeRequests prometheus.Counter
	geocodeFailures prometheus.Counter
	geocodeEmpty    prometheus.Counter
	markers         prometheus.Counter
	resolveDuration prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocache", Name: "hits_total",
			Help: "Geocoding queries served from the persistent cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocache", Name: "misses_total",
			Help: "Geocoding queries not found in the persistent cache.",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocache", Name: "errors_total",
			Help: "Persistent cache failures by operation.",
		}, []string{"op"}),
		geocodeRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocoder", Name: "requests_total",
			Help: "Geocoding requests sent upstream.",
		}),
		geocodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocoder", Name: "failures_total",
			Help: "Geocoding requests that failed.",
		}),
		geocodeEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "geocoder", Name: "empty_total",
			Help: "Geocoding requests that returned no candidate.",
		}),
		markers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "markers_total",
			Help: "Markers produced.",
		}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "duration_seconds",
			Help:    "Time to resolve all locations of one artist.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	for _, c := range []prometheus.Collector{
		m.cacheHits, m.cacheMisses, m.cacheErrors,
		m.geocodeRequests, m.geocodeFailures, m.geocodeEmpty,
		m.markers, m.resolveDuration, m.httpRequests,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

// CacheError counts a failed cache operation ("lookup" or "store").
func (m *Metrics) CacheError(op string) {
	if m != nil {
		m.cacheErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) GeocodeRequest() {
	if m != nil {
		m.geocodeRequests.Inc()
	}
}

func (m *Metrics) GeocodeFailure() {
	if m != nil {
		m.geocodeFailures.Inc()
	}
}

func (m *Metrics) GeocodeEmpty() {
	if m != nil {
		m.geocodeEmpty.Inc()
	}
}

func (m *Metrics) Marker() {
	if m != nil {
		m.markers.Inc()
	}
}

func (m *Metrics) ObserveResolve(seconds float64) {
	if m != nil {
		m.resolveDuration.Observe(seconds)
	}
}

func (m *Metrics) HTTPRequest(route, status string) {
	if m != nil {
		m.httpRequests.WithLabelValues(route, status).Inc()
	}
}
