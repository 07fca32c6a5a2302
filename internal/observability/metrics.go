package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "city_explorer"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Cache-aside metrics.
	CacheLookups        *prometheus.CounterVec // labels: category, result={hit,miss,stale}
	CacheEvictions      *prometheus.CounterVec // labels: category
	CacheRefreshShared  *prometheus.CounterVec // labels: category
	LocationResolutions *prometheus.CounterVec // labels: source={memory,store,geocoder}

	// Provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	ProviderDuration *prometheus.HistogramVec // labels: provider

	// Store metrics.
	StoreQueryDuration *prometheus.HistogramVec // labels: operation, table
	StoreErrors        *prometheus.CounterVec   // labels: operation, table

	// Refresh notification metrics.
	RefreshPublished     prometheus.Counter
	RefreshPublishErrors prometheus.Counter

	// HTTP metrics.
	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewDetachedMetrics creates Metrics that are never registered, for
// short-lived processes that expose no /metrics endpoint.
func NewDetachedMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Category cache lookups by category and result.",
		}, []string{"category", "result"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evicted_rows_total",
			Help:      "Rows deleted because they outlived the category staleness window.",
		}, []string{"category"}),
		CacheRefreshShared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_refresh_shared_total",
			Help:      "Requests that joined a refetch already in flight for the same location.",
		}, []string{"category"}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_resolutions_total",
			Help:      "Location resolutions by the tier that answered.",
		}, []string{"source"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Remote provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Remote provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		StoreQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Store query duration in seconds by operation and table.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "table"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Store failures by operation and table.",
		}, []string{"operation", "table"}),
		RefreshPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_events_published_total",
			Help:      "Refresh events written to Kafka.",
		}),
		RefreshPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_publish_errors_total",
			Help:      "Refresh events that could not be written to Kafka.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds by route.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CacheLookups,
		m.CacheEvictions,
		m.CacheRefreshShared,
		m.LocationResolutions,
		m.ProviderRequests,
		m.ProviderDuration,
		m.StoreQueryDuration,
		m.StoreErrors,
		m.RefreshPublished,
		m.RefreshPublishErrors,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	}
}
