package mass

import (
	"sort"
	"time"

	"github.com/23skdu/supermass/internal/chunk"
	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/metrics"
	"github.com/23skdu/supermass/internal/profile"
	"github.com/23skdu/supermass/internal/simd"
)

// Match is the best window of one batch.
type Match struct {
	Index    int     `json:"index"`
	Distance float64 `json:"distance"`
}

// Batch splits series into overlapping batches, finds the closest window to
// query inside each batch and returns the topMatches best of those, ordered
// by distance and then by index.
//
// Keeping only one match per batch suppresses the trivial neighbours of a
// good match, which differ from it by a few samples. batchSize is rounded up
// to a power of two and must then exceed len(query). Consecutive batches
// overlap by len(query)-1 samples so every window start is examined exactly
// once. topMatches must be between 1 and the number of batches.
func (s *Searcher) Batch(series, query []float64, batchSize, topMatches int) (matches []Match, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.BatchSearchesTotal.WithLabelValues(status).Inc()
	}()

	if err := validate("mass.batch", series, query); err != nil {
		return nil, err
	}
	if topMatches < 1 {
		return nil, errors.InvalidInputf("mass.batch", "top matches %d must be at least 1", topMatches)
	}

	n, m := len(series), len(query)
	ranges, err := chunk.BatchRanges(n, m, batchSize)
	if err != nil {
		return nil, err
	}
	if topMatches > len(ranges) {
		return nil, errors.InvalidInputf("mass.batch",
			"top matches %d exceeds batch count %d; use a smaller batch size or fewer matches", topMatches, len(ranges)).
			WithContext("batch_size", chunk.BatchSize(batchSize))
	}

	workers := s.batchWorkers(len(ranges))
	q := profile.NewQuery(query)
	best := make([]Match, len(ranges))
	counts, err := s.run(workers, len(ranges), func(i int) (profile.Counts, error) {
		r := ranges[i]
		dst := s.alloc.Float64s(r.Len() - m + 1)
		defer s.alloc.PutFloat64s(dst)

		c, err := s.segment(dst, series[r.Start:r.End], q)
		if err != nil {
			return c, err
		}
		j := simd.ArgMin(dst)
		best[i] = Match{Index: r.Start + j, Distance: dst[j]}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(best, func(i, j int) bool {
		if best[i].Distance != best[j].Distance {
			return best[i].Distance < best[j].Distance
		}
		return best[i].Index < best[j].Index
	})

	s.logger.Debug().
		Int("n", n).
		Int("m", m).
		Int("batches", len(ranges)).
		Int("workers", workers).
		Int("degenerate_sentinel", counts.Sentinel).
		Dur("duration", time.Since(start)).
		Msg("batch search completed")
	return best[:topMatches], nil
}

func (s *Searcher) batchWorkers(batches int) int {
	if s.cfg.Workers.IsAuto() {
		return chunk.CapWorkers(simd.LogicalCPUs(), batches)
	}
	return chunk.CapWorkers(int(s.cfg.Workers), batches)
}
