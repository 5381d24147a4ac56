package mass

import (
	"gonum.org/v1/gonum/floats"

	"github.com/23skdu/supermass/internal/concurrency"
	"github.com/23skdu/supermass/internal/conv"
	"github.com/23skdu/supermass/internal/metrics"
	"github.com/23skdu/supermass/internal/profile"
	"github.com/23skdu/supermass/internal/stats"
)

// segment computes the distance profile of q against seg into dst, which
// holds len(seg)-q.Len+1 entries. dst doubles as the buffer for the sliding
// dot products.
func (s *Searcher) segment(dst, seg []float64, q profile.Query) (profile.Counts, error) {
	m := q.Len

	// Products with the centred query do not change when a constant is added
	// to the series, so the transform runs on the segment moved to zero mean.
	shifted := s.alloc.Float64s(len(seg))
	defer s.alloc.PutFloat64s(shifted)
	copy(shifted, seg)
	floats.AddConst(-floats.Sum(seg)/float64(len(seg)), shifted)

	if err := conv.SlidingDotProductInto(dst, s.engine, s.alloc, shifted, q.Centered); err != nil {
		return profile.Counts{}, err
	}

	mv := stats.Moving{
		Mean:   s.alloc.Float64s(len(dst)),
		StdDev: s.alloc.Float64s(len(dst)),
	}
	defer s.alloc.PutFloat64s(mv.Mean)
	defer s.alloc.PutFloat64s(mv.StdDev)
	stats.MovingInto(mv, seg, m)

	return profile.Reconstruct(dst, dst, mv, q, s.mode), nil
}

// run executes tasks on the worker pool and totals their degenerate window
// counts.
func (s *Searcher) run(workers, tasks int, fn func(i int) (profile.Counts, error)) (profile.Counts, error) {
	results, err := concurrency.Run(workers, tasks, fn)
	if err != nil {
		s.logger.Warn().Err(err).Int("workers", workers).Int("tasks", tasks).Msg("chunk failed")
		return profile.Counts{}, err
	}

	var total profile.Counts
	for _, c := range results {
		total.Add(c)
	}
	metrics.DegenerateWindowsTotal.WithLabelValues("zero").Add(float64(total.Zero))
	metrics.DegenerateWindowsTotal.WithLabelValues("sentinel").Add(float64(total.Sentinel))
	return total, nil
}
