// Package metrics holds the Prometheus instrumentation shared by the client, cache and API layers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream TourAPI
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourapi_requests_total",
			Help: "Total number of TourAPI calls by operation and outcome",
		},
		[]string{"operation", "outcome"}, // "success", "client_error", "server_error", "timeout", "network", "upstream_error", "malformed", "rejected"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourapi_request_duration_seconds",
			Help:    "TourAPI call duration in seconds, retries included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourapi_retries_total",
			Help: "Total number of TourAPI retry attempts by failure reason",
		},
		[]string{"reason"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_fetch_failures_total",
			Help: "Total number of individual failures inside batch fetches",
		},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits by level",
		},
		[]string{"level"},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Local API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Region sync
	SyncTasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_tasks_processed_total",
			Help: "Total number of sync tasks processed by type and result",
		},
		[]string{"task_type", "result"},
	)
)

// RecordAPIRequest records one handled local API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordUpstream records one finished TourAPI call.
func RecordUpstream(operation, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
