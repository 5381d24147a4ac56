package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChunksDispatchedTotal counts chunks handed to the worker pool
	ChunksDispatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supermass_chunks_dispatched_total",
			Help: "Total number of chunks dispatched to workers",
		},
	)

	// ChunkFailuresTotal counts chunks that returned an error or panicked
	ChunkFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supermass_chunk_failures_total",
			Help: "Total number of chunk computations that failed",
		},
	)

	// ChunkDurationSeconds measures per-chunk pipeline latency
	ChunkDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "supermass_chunk_duration_seconds",
			Help:    "Duration of a single chunk pipeline",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
		},
	)

	// WorkersInFlight counts pool workers running right now, summed over
	// concurrent calls
	WorkersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "supermass_workers_in_flight",
			Help: "Number of pool workers currently running, across all calls",
		},
	)
)
