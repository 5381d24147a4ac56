// Package stats computes the per-window statistics consumed by the distance
// reconstruction: the running mean and population standard deviation of every
// length-m window of a series, and the mean and standard deviation of a query.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// ResyncInterval is the number of O(1) window updates after which the
	// running sums are recomputed exactly from the window contents.
	ResyncInterval = 1024

	// ConstantTolerance is the relative tolerance used when comparing the raw
	// values of constant windows, and the spread below which a window counts
	// as flat (see Flat).
	ConstantTolerance = 1e-8
)

// Moving holds the statistics of every window of a series. Both slices have
// one entry per valid window start.
type Moving struct {
	Mean   []float64
	StdDev []float64
}

// Len returns the number of windows.
func (mv Moving) Len() int {
	return len(mv.Mean)
}

// Slice returns the statistics of windows [from, to). The backing arrays are
// shared.
func (mv Moving) Slice(from, to int) Moving {
	return Moving{Mean: mv.Mean[from:to], StdDev: mv.StdDev[from:to]}
}

// NewMoving computes mean and standard deviation for all len(series)-m+1
// windows of length m in O(n). The caller guarantees 1 <= m <= len(series).
func NewMoving(series []float64, m int) Moving {
	windows := len(series) - m + 1
	mv := Moving{
		Mean:   make([]float64, windows),
		StdDev: make([]float64, windows),
	}
	MovingInto(mv, series, m)
	return mv
}

// MovingInto is NewMoving writing into preallocated slices of length
// len(series)-m+1.
func MovingInto(dst Moving, series []float64, m int) {
	windows := len(series) - m + 1
	if len(dst.Mean) != windows || len(dst.StdDev) != windows {
		panic("stats: destination length mismatch")
	}

	fm := float64(m)
	// The sums run over x-ref, where ref is the window mean at the last
	// resync, so a large offset does not cancel against a small spread.
	var ref, sum, sumSq float64
	// lastChange is the greatest index <= the window end whose sample differs
	// from its predecessor. A window starting at or after it is constant.
	lastChange := 0
	for k := 1; k < m; k++ {
		if series[k] != series[k-1] {
			lastChange = k
		}
	}
	for i := 0; i < windows; i++ {
		end := i + m - 1
		if i > 0 && series[end] != series[end-1] {
			lastChange = end
		}
		constant := lastChange <= i

		if i%ResyncInterval == 0 {
			w := series[i : i+m]
			ref = floats.Sum(w) / fm
			sum, sumSq = 0, 0
			for _, v := range w {
				d := v - ref
				sum += d
				sumSq += d * d
			}
		} else {
			out, in := series[i-1]-ref, series[end]-ref
			sum += in - out
			sumSq += in*in - out*out
		}
		if constant {
			dst.Mean[i] = series[i]
			dst.StdDev[i] = 0
			continue
		}

		shift := sum / fm
		mean := ref + shift
		variance := sumSq/fm - shift*shift
		if variance < 0 {
			// cancellation
			variance = 0
		}
		std := math.Sqrt(variance)
		if Flat(mean, std) {
			std = 0
		}
		dst.Mean[i] = mean
		dst.StdDev[i] = std
	}
}

// MeanStd returns the mean and population standard deviation of x. A constant
// x reports its value as the mean and a standard deviation of exactly zero, as
// does a flat one.
func MeanStd(x []float64) (mean, std float64) {
	if floats.Min(x) == floats.Max(x) {
		return x[0], 0
	}
	mean, std = stat.PopMeanStdDev(x, nil)
	if Flat(mean, std) {
		std = 0
	}
	return mean, std
}

// Flat reports whether a spread std around mean is at or below
// ConstantTolerance·|mean|. Such a sequence carries fewer than eight
// significant digits of shape and is treated as constant.
func Flat(mean, std float64) bool {
	return std <= ConstantTolerance*math.Abs(mean)
}

// Equal reports whether two raw values agree within ConstantTolerance.
func Equal(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= ConstantTolerance*scale
}
