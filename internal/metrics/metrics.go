package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProfilesTotal counts distance profile computations by mode and status
	ProfilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_profiles_total",
			Help: "The total number of distance profile computations",
		},
		[]string{"mode", "status"},
	)

	// ProfileDurationSeconds measures the latency of a full profile computation
	ProfileDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supermass_profile_duration_seconds",
			Help:    "Duration of distance profile computations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"mode"},
	)

	// ProfileOffsetsTotal tracks the number of distances produced
	ProfileOffsetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supermass_profile_offsets_total",
			Help: "Total number of distance profile entries produced",
		},
	)

	// BatchSearchesTotal counts top-k batch searches by status
	BatchSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_batch_searches_total",
			Help: "The total number of batch top-k searches",
		},
		[]string{"status"},
	)

	// DegenerateWindowsTotal counts windows handled by the constant-window policy
	DegenerateWindowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermass_degenerate_windows_total",
			Help: "Windows whose distance was resolved by the constant-window policy",
		},
		[]string{"outcome"},
	)
)
