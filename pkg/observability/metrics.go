// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the lookalike service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// RequestBuckets defines histogram buckets suited for request latencies that
// include a model inference call, ranging from 10ms to 30s.
var RequestBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookalike_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookalike_request_duration_seconds",
			Help:    "Request duration",
			Buckets: RequestBuckets,
		},
		[]string{"route"},
	)

	// IngestsTotal counts ingestion attempts by outcome (the ingestion
	// stage that failed, or "committed").
	IngestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookalike_ingests_total",
			Help: "Ingestion attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SearchesTotal counts similarity queries by outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookalike_searches_total",
			Help: "Similarity queries by outcome",
		},
		[]string{"outcome"},
	)

	// EmbedLatency records feature extraction latency in seconds.
	EmbedLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookalike_embed_latency_seconds",
			Help:    "Embedding latency",
			Buckets: RequestBuckets,
		},
	)

	// StoreOpLatency records backing store operation latency in seconds by
	// store (blob/vector) and operation.
	StoreOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookalike_store_op_latency_seconds",
			Help:    "Backing store operation latency",
			Buckets: RequestBuckets,
		},
		[]string{"store", "op"},
	)

	// IndexSize reports the number of committed vector rows.
	IndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookalike_index_size",
			Help: "Committed vector rows",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		IngestsTotal,
		SearchesTotal,
		EmbedLatency,
		StoreOpLatency,
		IndexSize,
	)
}
