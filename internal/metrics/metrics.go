package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the dashboard's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool_dashboard",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of GeckoTerminal requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pool_dashboard",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of GeckoTerminal requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool_dashboard",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	sectionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool_dashboard",
			Subsystem: "render",
			Name:      "section_failures_total",
			Help:      "Dashboard sections that could not be rendered, by section and error kind.",
		},
		[]string{"section", "kind"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool_dashboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pool_dashboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		upstreamRequests,
		upstreamDuration,
		cacheLookups,
		sectionFailures,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordUpstream records one upstream call. status is 0 for transport errors.
func RecordUpstream(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(endpoint, label).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func RecordSectionFailure(section, kind string) {
	sectionFailures.WithLabelValues(section, kind).Inc()
}

// Middleware records per-route request counts and latency. Routes are labelled
// by their registered pattern so path parameters do not explode cardinality.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().URL.Path == "/metrics" {
			return next(c)
		}

		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method

		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
