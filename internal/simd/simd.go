// Package simd exposes the vector kernels of the direct (non-FFT) paths and
// the CPU facts used for auto-tuning.
package simd

import (
	"github.com/viterin/vek"
)

// Dot returns the dot product of a and b.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("simd: vector length mismatch")
	}
	if len(a) == 0 {
		return 0
	}
	return vek.Dot(a, b)
}

// ArgMin returns the index of the smallest element of x, the first one on
// ties, or -1 for an empty slice.
func ArgMin(x []float64) int {
	if len(x) == 0 {
		return -1
	}
	return vek.ArgMin(x)
}

// SlidingDot writes dst[i] = <query, series[i:i+len(query)]> for every window
// by direct summation. It is O(n·m) and serves short queries and reference
// checks.
func SlidingDot(dst, series, query []float64) {
	m := len(query)
	if len(dst) != len(series)-m+1 {
		panic("simd: destination length mismatch")
	}
	for i := range dst {
		dst[i] = vek.Dot(series[i:i+m], query)
	}
}
