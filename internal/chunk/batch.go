package chunk

import (
	"math/bits"

	"github.com/23skdu/supermass/internal/errors"
)

// Range is the half-open sample range [Start, End) covered by one batch.
type Range struct {
	Start int
	End   int
}

// Len returns the number of samples in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// BatchSize rounds size up to a power of two.
func BatchSize(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// BatchRanges splits a series of length n into overlapping batches for a
// query of length m. The batch size is rounded up to a power of two and must
// exceed m. Consecutive batches start batch-(m-1) samples apart so that every
// window start in [0, n-m] falls entirely inside exactly one batch.
func BatchRanges(n, m, size int) ([]Range, error) {
	if m < 1 || m > n {
		return nil, errors.InvalidInputf("chunk.batch", "query length %d invalid for series length %d", m, n)
	}
	batch := BatchSize(size)
	if batch <= m {
		return nil, errors.InvalidInputf("chunk.batch", "batch size %d must exceed query length %d", batch, m).
			WithContext("requested", size)
	}

	step := batch - (m - 1)
	ranges := make([]Range, 0, (n-m)/step+1)
	for start := 0; start <= n-m; start += step {
		end := start + batch
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges, nil
}
