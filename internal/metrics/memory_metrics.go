package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FFTPlanCacheTotal counts FFT plan lookups by result (hit/miss)
	FFTPlanCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_fft_plan_cache_total",
			Help: "FFT plan cache lookups by result",
		},
		[]string{"result"},
	)

	// FFTSize records the transform sizes in use
	FFTSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "supermass_fft_size",
			Help:    "Transform sizes selected for sliding dot products",
			Buckets: prometheus.ExponentialBuckets(64, 4, 12),
		},
	)

	// ScratchPoolTotal counts scratch buffer requests by kind and result
	ScratchPoolTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_scratch_pool_total",
			Help: "Scratch buffer pool lookups by element kind and result",
		},
		[]string{"kind", "result"},
	)

	// LogEntriesTotal counts log entries by level
	LogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_log_entries_total",
			Help: "Total number of log entries by level",
		},
		[]string{"level"},
	)

	// ArrowBytesAllocatedTotal counts bytes requested from the Arrow allocator
	ArrowBytesAllocatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supermass_arrow_bytes_allocated_total",
			Help: "Total bytes allocated while decoding Arrow IPC input",
		},
	)

	// ArrowBytesInUse tracks Arrow buffer bytes not yet freed
	ArrowBytesInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "supermass_arrow_bytes_in_use",
			Help: "Arrow buffer bytes currently allocated",
		},
	)
)
