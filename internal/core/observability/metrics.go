// Package observability registers and exposes the service's prometheus
// metrics.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalize_rows_total",
			Help: "Rows seen by the dataset normalizer, by outcome.",
		},
		[]string{"outcome"},
	)

	composeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compose_duration_seconds",
			Help:    "Duration of whole map compositions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"mode", "clustering"},
	)

	clusterSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluster_size_points",
			Help:    "Points per produced cluster.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	memoResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_results_total",
			Help: "Composition memo lookups by outcome.",
		},
		[]string{"outcome"},
	)

	invalidationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Dataset invalidation events by result.",
		},
		[]string{"result"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func AddRows(accepted, rejected int) {
	rowsTotal.WithLabelValues("accepted").Add(float64(accepted))
	rowsTotal.WithLabelValues("rejected").Add(float64(rejected))
}

func ObserveCompose(mode string, clusteringEnabled bool, durationSeconds float64) {
	composeDurationSeconds.WithLabelValues(mode, strconv.FormatBool(clusteringEnabled)).Observe(durationSeconds)
}

func ObserveClusterSize(points int) {
	clusterSize.Observe(float64(points))
}

func IncMemoHit()  { memoResults.WithLabelValues("hit").Inc() }
func IncMemoMiss() { memoResults.WithLabelValues("miss").Inc() }

func IncInvalidation(result string) {
	invalidationEvents.WithLabelValues(result).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
