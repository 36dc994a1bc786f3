// Package metrics exposes Prometheus collectors for the site generator and
// the sitemap service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	buildsTotal                *prometheus.CounterVec
	buildDurationSeconds       prometheus.Histogram
	pagesTotal                 *prometheus.CounterVec
	sourceLoadsTotal           *prometheus.CounterVec
	sitemapResponsesTotal      *prometheus.CounterVec
	cacheLookupsTotal          *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		buildsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_builds_total",
				Help: "Total number of static builds, labeled by result.",
			},
			[]string{"result"},
		)

		buildDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "site_build_duration_seconds",
				Help:    "Histogram of static build durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_pages_total",
				Help: "Total number of job pages processed, labeled by status.",
			},
			[]string{"status"},
		)

		sourceLoadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_source_loads_total",
				Help: "Total number of job collection loads, labeled by purpose and outcome.",
			},
			[]string{"purpose", "outcome"},
		)

		sitemapResponsesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_responses_total",
				Help: "Total number of on-demand sitemap responses, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_cache_lookups_total",
				Help: "Total number of job cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBuild records one build run.
func ObserveBuild(result string, duration time.Duration) {
	Init()
	buildsTotal.WithLabelValues(result).Inc()
	buildDurationSeconds.Observe(duration.Seconds())
}

// ObservePage counts one job page by status (written, skipped, failed).
func ObservePage(status string) {
	Init()
	pagesTotal.WithLabelValues(status).Inc()
}

// ObserveSourceLoad counts a collection load; outcome is fetched or fallback.
func ObserveSourceLoad(purpose, outcome string) {
	Init()
	sourceLoadsTotal.WithLabelValues(purpose, outcome).Inc()
}

// ObserveSitemapResponse counts an on-demand sitemap response.
func ObserveSitemapResponse(outcome string) {
	Init()
	sitemapResponsesTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
