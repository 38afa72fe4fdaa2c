// Package metrics holds the prometheus collectors for the recommendation
// service. Collectors live on their own registry so tests can create
// isolated instances.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation outcomes.
const (
	OutcomeResults           = "results"
	OutcomeNoRecommendations = "no_recommendations"
	OutcomeEmptyPage         = "empty_page"
)

// Metrics groups the service collectors and the registry they are bound to.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	Recommendations     *prometheus.CounterVec
	PageSize            prometheus.Histogram
	CatalogListings     prometheus.Gauge
	VisitedListings     prometheus.Gauge
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendation_requests_total",
				Help: "Total number of recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		PageSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recommendation_page_size",
				Help:    "Page size applied to recommendation requests",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		CatalogListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_listings",
			Help: "Number of listings in the loaded catalog",
		}),
		VisitedListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_visited_listings",
			Help: "Number of listings with at least one recorded visit",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestDuration,
		m.Recommendations,
		m.PageSize,
		m.CatalogListings,
		m.VisitedListings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveRecommendation records the outcome and page size of one request.
func (m *Metrics) ObserveRecommendation(outcome string, pageSize int) {
	m.Recommendations.WithLabelValues(outcome).Inc()
	if pageSize > 0 {
		m.PageSize.Observe(float64(pageSize))
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
