// Package metrics holds the process Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StatsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_stats_cache_hits_total",
			Help: "Statistics served from cache",
		},
		[]string{"report"},
	)

	StatsCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_stats_cache_misses_total",
			Help: "Statistics computed because the cache had no entry or was unavailable",
		},
		[]string{"report"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// RecordRequest records one finished request. route is the mux pattern, never the raw path.
func RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordCache(report string, hit bool) {
	if hit {
		StatsCacheHits.WithLabelValues(report).Inc()
		return
	}
	StatsCacheMisses.WithLabelValues(report).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
