// Package conv computes sliding dot products between a query and every
// same-length window of a series.
package conv

import (
	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/fft"
	"github.com/23skdu/supermass/internal/pool"
	"github.com/23skdu/supermass/internal/simd"
)

// SlidingDotProduct returns dot[i] = <query, series[i:i+m]> for i in
// [0, n-m], computed with the convolution theorem in O(n log n).
func SlidingDotProduct(engine *fft.Engine, alloc pool.Allocator, series, query []float64) ([]float64, error) {
	if err := check(series, query); err != nil {
		return nil, err
	}
	dst := make([]float64, len(series)-len(query)+1)
	if err := SlidingDotProductInto(dst, engine, alloc, series, query); err != nil {
		return nil, err
	}
	return dst, nil
}

// SlidingDotProductInto is SlidingDotProduct writing into dst, which must have
// length len(series)-len(query)+1.
//
// The series and the reversed query are zero-padded to a transform length
// N >= n+m, multiplied in the frequency domain and transformed back. With the
// query reversed, the circular convolution y satisfies
//
//	y[i+m-1] = sum_k series[i+k] * query[k]
//
// so the dot products are the contiguous slice y[m-1 : n]. N >= n+m-1 keeps
// the wrapped tail of the convolution out of that slice.
func SlidingDotProductInto(dst []float64, engine *fft.Engine, alloc pool.Allocator, series, query []float64) error {
	if err := check(series, query); err != nil {
		return err
	}
	n, m := len(series), len(query)
	if len(dst) != n-m+1 {
		return errors.InvalidInputf("conv.sliding_dot", "destination length %d, want %d", len(dst), n-m+1)
	}

	size, err := engine.Size(n + m)
	if err != nil {
		return err
	}
	plan := engine.Acquire(size)
	defer plan.Release()

	xs := alloc.Float64s(size)
	defer alloc.PutFloat64s(xs)
	qs := alloc.Float64s(size)
	defer alloc.PutFloat64s(qs)

	copy(xs, series)
	for k := 0; k < m; k++ {
		qs[k] = query[m-1-k]
	}

	cl := plan.CoefficientsLen()
	xf := alloc.Complex128s(cl)
	defer alloc.PutComplex128s(xf)
	qf := alloc.Complex128s(cl)
	defer alloc.PutComplex128s(qf)

	xf = plan.Forward(xf, xs)
	qf = plan.Forward(qf, qs)
	for i := range xf {
		xf[i] *= qf[i]
	}

	// xs is no longer needed in the time domain; reuse it for the output
	y := plan.Inverse(xs, xf)
	copy(dst, y[m-1:n])
	return nil
}

// Direct computes the same sliding dot products by explicit summation, O(n·m).
func Direct(series, query []float64) ([]float64, error) {
	if err := check(series, query); err != nil {
		return nil, err
	}
	dst := make([]float64, len(series)-len(query)+1)
	simd.SlidingDot(dst, series, query)
	return dst, nil
}

func check(series, query []float64) error {
	if len(query) == 0 {
		return errors.NewInvalidInput("conv.sliding_dot", "query is empty")
	}
	if len(query) > len(series) {
		return errors.InvalidInputf("conv.sliding_dot", "query length %d exceeds series length %d", len(query), len(series))
	}
	return nil
}
