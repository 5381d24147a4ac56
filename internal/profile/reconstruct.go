// Package profile turns sliding dot products and window statistics into
// z-normalized Euclidean distances.
package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/23skdu/supermass/internal/stats"
)

// Sentinel is reported for windows whose z-normalized distance is undefined
// and not known to be zero: a constant window against a varying query (or the
// reverse), or two constant sequences of different raw value.
const Sentinel = math.MaxFloat64

// Mode selects between true distances and squared (pseudo) distances.
type Mode int

const (
	// Exact returns the z-normalized Euclidean distance.
	Exact Mode = iota
	// Pseudo returns the squared distance. It preserves the ordering of Exact
	// and skips the square root.
	Pseudo
)

func (m Mode) String() string {
	if m == Pseudo {
		return "pseudo"
	}
	return "exact"
}

// Query carries the statistics of the query, computed once per call.
// Centered is the query minus its mean; sliding dot products are taken
// against it.
type Query struct {
	Len      int
	Mean     float64
	StdDev   float64
	Centered []float64
}

// NewQuery computes the statistics of q.
func NewQuery(q []float64) Query {
	mean, std := stats.MeanStd(q)
	centered := make([]float64, len(q))
	copy(centered, q)
	floats.AddConst(-mean, centered)
	return Query{Len: len(q), Mean: mean, StdDev: std, Centered: centered}
}

// Counts reports how degenerate windows were resolved.
type Counts struct {
	Zero     int
	Sentinel int
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Zero += other.Zero
	c.Sentinel += other.Sentinel
}

// Reconstruct writes into dst the distance between the query and each window
// described by dot and mv. dst, dot and mv must have the same length. dot[i]
// is the dot product of window i with q.Centered, which equals the product of
// the centred window with the centred query and so carries no offset term.
//
// For a window i with deviation σ and dot product d against a query of length
// m and deviation σQ:
//
//	corr    = d / (m·σ·σQ)                   clamped to [−1, 1]
//	dist²   = 2m·(1 − corr)
//	dist    = sqrt(dist²)                    (Exact only)
//
// When σ or σQ is zero the correlation is undefined; see Degenerate.
func Reconstruct(dst, dot []float64, mv stats.Moving, q Query, mode Mode) Counts {
	if len(dst) != len(dot) || len(dot) != mv.Len() {
		panic("profile: length mismatch")
	}

	var counts Counts
	fm := float64(q.Len)
	queryConstant := q.StdDev == 0
	for i, d := range dot {
		mean, std := mv.Mean[i], mv.StdDev[i]
		if queryConstant || std == 0 {
			v := Degenerate(mean, std, q)
			if v == 0 {
				counts.Zero++
			} else {
				counts.Sentinel++
			}
			dst[i] = v
			continue
		}

		corr := d / (fm * std * q.StdDev)
		dst[i] = finish(2*fm*(1-clamp(corr)), mode)
	}
	return counts
}

// Degenerate resolves a window where the window, the query or both are
// constant. Two constant sequences with equal raw values are identical after
// any normalization, so their distance is 0. Every other case compares a flat
// line against a shape, or two different flat lines, and is reported as
// Sentinel. The value is the same in both modes.
func Degenerate(windowMean, windowStd float64, q Query) float64 {
	if windowStd == 0 && q.StdDev == 0 && stats.Equal(windowMean, q.Mean) {
		return 0
	}
	return Sentinel
}

func clamp(corr float64) float64 {
	switch {
	case corr > 1:
		return 1
	case corr < -1:
		return -1
	default:
		return corr
	}
}

func finish(sq float64, mode Mode) float64 {
	if sq < 0 {
		sq = 0
	}
	if mode == Pseudo {
		return sq
	}
	return math.Sqrt(sq)
}
