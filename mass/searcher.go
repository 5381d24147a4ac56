// Package mass computes z-normalized Euclidean distance profiles of a query
// against every subsequence of a time series in O(n log n).
//
// A distance profile holds, for each window start i in [0, n-m], the distance
// between the z-normalized query and the z-normalized window
// series[i : i+m]. Windows whose distance is undefined are reported as
// Sentinel; see Searcher.Profile.
package mass

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/23skdu/supermass/internal/chunk"
	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/fft"
	"github.com/23skdu/supermass/internal/metrics"
	"github.com/23skdu/supermass/internal/pool"
	"github.com/23skdu/supermass/internal/profile"
	"github.com/23skdu/supermass/internal/simd"
)

// Sentinel is the distance reported for a window that cannot be compared
// with the query: exactly one of them is constant, or both are constant at
// different values. It is the largest finite float64, so it never wins a
// minimum search against a real distance.
const Sentinel = profile.Sentinel

// Searcher computes distance profiles with a fixed configuration. It is safe
// for concurrent use; FFT plans and scratch buffers are shared between calls.
type Searcher struct {
	cfg    Config
	logger zerolog.Logger
	engine *fft.Engine
	alloc  pool.Allocator
	mode   profile.Mode
}

// New validates cfg and returns a Searcher.
func New(cfg Config, logger zerolog.Logger) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	alloc, err := pool.New(cfg.Allocator)
	if err != nil {
		return nil, errors.NewConfigurationError("mass.new", err.Error())
	}

	mode := profile.Exact
	if !cfg.ExactDistance {
		mode = profile.Pseudo
	}

	return &Searcher{
		cfg:    cfg,
		logger: logger.With().Str("component", "mass").Logger(),
		engine: fft.NewEngine(cfg.fftOptions()...),
		alloc:  alloc,
		mode:   mode,
	}, nil
}

// Config returns the configuration the Searcher was built with.
func (s *Searcher) Config() Config {
	return s.cfg
}

var (
	defaultOnce     sync.Once
	defaultSearcher *Searcher
)

// Profile computes the exact distance profile of query against series with
// the default configuration.
func Profile(series, query []float64) ([]float64, error) {
	defaultOnce.Do(func() {
		// DefaultConfig always validates.
		defaultSearcher, _ = New(DefaultConfig(), zerolog.Nop())
	})
	return defaultSearcher.Profile(series, query)
}

// Profile returns the distance profile of query against series: a slice of
// length len(series)-len(query)+1 whose entry i is the distance between the
// z-normalized query and the z-normalized window series[i:i+len(query)].
//
// A constant window compared with a constant query yields 0 when both hold
// the same value and Sentinel otherwise; a constant window or query compared
// with a varying one yields Sentinel. With Config.ExactDistance unset the
// squared distances are returned instead.
//
// The inputs are only read. The work is split into contiguous chunks of
// window starts processed in parallel; the result does not depend on the
// worker count beyond floating point rounding.
func (s *Searcher) Profile(series, query []float64) (dist []float64, err error) {
	start := time.Now()
	defer func() {
		s.observe(start, err)
	}()

	if err := validate("mass.profile", series, query); err != nil {
		return nil, err
	}

	n, m := len(series), len(query)
	offsets := n - m + 1
	workers := s.workers(offsets, m)
	chunks := chunk.Partition(n, m, workers)
	q := profile.NewQuery(query)

	dist = make([]float64, offsets)
	counts, err := s.run(workers, len(chunks), func(i int) (profile.Counts, error) {
		c := chunks[i]
		return s.segment(dist[c.Offset:c.End()], series[c.Offset:c.SeriesEnd(m)], q)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProfileOffsetsTotal.Add(float64(offsets))
	s.logger.Debug().
		Int("n", n).
		Int("m", m).
		Int("workers", workers).
		Int("chunks", len(chunks)).
		Int("degenerate_zero", counts.Zero).
		Int("degenerate_sentinel", counts.Sentinel).
		Dur("duration", time.Since(start)).
		Msg("distance profile computed")
	return dist, nil
}

func (s *Searcher) observe(start time.Time, err error) {
	mode := s.mode.String()
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProfilesTotal.WithLabelValues(mode, status).Inc()
	metrics.ProfileDurationSeconds.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// workers picks the chunk count for a profile with the given number of
// window starts.
func (s *Searcher) workers(offsets, m int) int {
	if s.cfg.Workers.IsAuto() {
		return chunk.AutoWorkers(offsets, m, simd.LogicalCPUs(), s.cfg.MinChunkOffsets)
	}
	return chunk.CapWorkers(int(s.cfg.Workers), offsets)
}

func validate(op string, series, query []float64) error {
	n, m := len(series), len(query)
	switch {
	case n == 0:
		return errors.NewInvalidInput(op, "series is empty")
	case m == 0:
		return errors.NewInvalidInput(op, "query is empty")
	case m > n:
		return errors.InvalidInputf(op, "query length %d exceeds series length %d", m, n).
			WithContext("n", n).
			WithContext("m", m)
	}
	if i := firstNonFinite(query); i >= 0 {
		return errors.InvalidInputf(op, "query sample %d is not finite", i)
	}
	if i := firstNonFinite(series); i >= 0 {
		return errors.InvalidInputf(op, "series sample %d is not finite", i)
	}
	return nil
}

func firstNonFinite(x []float64) int {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
