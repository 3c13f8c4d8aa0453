package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Wayfinder
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Resolver Metrics
	LookupEventsTotal *prometheus.CounterVec
	LookupDuration    *prometheus.HistogramVec
	CacheEntries      *prometheus.GaugeVec

	// Maintenance Metrics
	CacheSweepDeletedTotal prometheus.Counter
	DatasetImportsTotal    *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric against reg. Pass
// prometheus.DefaultRegisterer in main and a fresh prometheus.NewRegistry()
// in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayfinder_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wayfinder_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wayfinder_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Resolver Metrics
		LookupEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayfinder_lookup_events_total",
				Help: "Location lookup outcomes by event (hits.memory, hits.durable, hits.repository, hits.fallback, misses, errors)",
			},
			[]string{"event"},
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wayfinder_lookup_duration_seconds",
				Help:    "Location lookup latency by outcome",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wayfinder_cache_entries",
				Help: "Current number of entries per cache tier",
			},
			[]string{"cache_name"},
		),

		// Maintenance Metrics
		CacheSweepDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wayfinder_cache_sweep_deleted_total",
				Help: "Durable lookup cache entries purged by the retention sweep",
			},
		),
		DatasetImportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayfinder_dataset_imports_total",
				Help: "Location dataset imports by result",
			},
			[]string{"result"},
		),
	}
}
