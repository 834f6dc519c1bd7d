package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coursecatalog"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	catalogSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Total number of catalog searches by outcome.",
		},
		[]string{"status"},
	)

	catalogSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "search_duration_seconds",
			Help:      "Duration of catalog searches including store round trips.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	catalogDroppedFilters = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "dropped_filter_values_total",
			Help:      "Filter values ignored because they could not be interpreted.",
		},
		[]string{"field"},
	)

	fceAggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fce",
			Name:      "aggregations_total",
			Help:      "Evaluation aggregations by result (summary or empty).",
		},
		[]string{"result"},
	)

	snapshotLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "lookups_total",
			Help:      "Snapshot cache lookups by key and outcome (hit or miss).",
		},
		[]string{"key", "outcome"},
	)

	snapshotRecomputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "recomputations_total",
			Help:      "Snapshot recomputations by key and status.",
		},
		[]string{"key", "status"},
	)

	snapshotRecomputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of snapshot recomputations.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"key"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		catalogSearches,
		catalogSearchDuration,
		catalogDroppedFilters,
		fceAggregations,
		snapshotLookups,
		snapshotRecomputations,
		snapshotRecomputeDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count, latency and in-flight gauge per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordCatalogSearch records one catalog search.
func RecordCatalogSearch(status string, d time.Duration) {
	catalogSearches.WithLabelValues(status).Inc()
	catalogSearchDuration.Observe(d.Seconds())
}

// RecordDroppedFilter counts a filter value dropped during request parsing.
func RecordDroppedFilter(field string) {
	catalogDroppedFilters.WithLabelValues(field).Inc()
}

// RecordAggregation counts one FCE aggregation.
func RecordAggregation(empty bool) {
	result := "summary"
	if empty {
		result = "empty"
	}
	fceAggregations.WithLabelValues(result).Inc()
}

// SnapshotObserver feeds snapshot cache events into Prometheus.
type SnapshotObserver struct{}

// Hit records a fresh entry being served.
func (SnapshotObserver) Hit(key string) {
	snapshotLookups.WithLabelValues(key, "hit").Inc()
}

// Miss records a stale or absent entry.
func (SnapshotObserver) Miss(key string) {
	snapshotLookups.WithLabelValues(key, "miss").Inc()
}

// Recomputed records the end of one recomputation.
func (SnapshotObserver) Recomputed(key string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	snapshotRecomputations.WithLabelValues(key, status).Inc()
	snapshotRecomputeDuration.WithLabelValues(key).Observe(d.Seconds())
}
