package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry by promauto.

var (
	// HTTP requests, labeled by method, path and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempwalk_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tempwalk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	// BatchesTotal counts batches produced by walkers, per start weighting policy.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempwalk_batches_total",
			Help: "Total number of walk batches sampled",
		},
		[]string{"policy"},
	)

	WalksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempwalk_walks_total",
			Help: "Total number of walks sampled",
		},
		[]string{"policy"},
	)

	// SampleErrorsTotal counts aborted batches (cancellation included).
	SampleErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempwalk_sample_errors_total",
			Help: "Total number of batch draws that failed",
		},
		[]string{"policy"},
	)

	// BatchDuration measures the time to sample one batch.
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tempwalk_batch_duration_seconds",
			Help:    "Duration of one batch draw in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"policy"},
	)

	// RecordedBatches counts batches written by recorders, per precision.
	RecordedBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempwalk_recorded_batches_total",
			Help: "Total number of batches written to recordings",
		},
		[]string{"precision"},
	)
)
