package tools

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every Brick metric. It is separate from the default
// registry so tests can build servers repeatedly.
var Registry = prometheus.NewRegistry()

var (
	requestsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "brick",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brick",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// OpenConnections is 1 while the connection manager holds a live handle.
	OpenConnections = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "brick",
		Name:      "db_open_connections",
		Help:      "Number of open database handles.",
	})

	// Reconnects counts handle replacements caused by config changes or brick-up.
	Reconnects = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: "brick",
		Name:      "db_reconnects_total",
		Help:      "Database handle replacements.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MetricsHandler serves the Prometheus exposition format for Registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// MetricsMiddleware records request counts and latency. Requests are labelled
// by the route pattern registered on routes, never by raw path, to keep label
// cardinality bounded.
func MetricsMiddleware(routes *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			_, route := routes.Handler(r)
			if route == "" {
				route = "unmatched"
			}

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
			requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
