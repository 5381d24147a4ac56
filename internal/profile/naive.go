package profile

import (
	"gonum.org/v1/gonum/floats"

	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/stats"
)

// Naive computes the distance profile by z-normalizing every window and the
// query explicitly and summing squared differences, O(n·m). It applies the
// same degenerate-window policy as Reconstruct and is the reference the FFT
// pipeline is checked against.
func Naive(series, query []float64, mode Mode) ([]float64, error) {
	m := len(query)
	if m == 0 || m > len(series) {
		return nil, errors.InvalidInputf("profile.naive", "query length %d invalid for series length %d", m, len(series))
	}

	q := NewQuery(query)
	zq := normalize(query, q.Mean, q.StdDev)

	out := make([]float64, len(series)-m+1)
	zw := make([]float64, m)
	for i := range out {
		w := series[i : i+m]
		mean, std := stats.MeanStd(w)
		if std == 0 || q.StdDev == 0 {
			out[i] = Degenerate(mean, std, q)
			continue
		}
		for k, v := range w {
			zw[k] = (v - mean) / std
		}
		sq := floats.Distance(zw, zq, 2)
		out[i] = finish(sq*sq, mode)
	}
	return out, nil
}

func normalize(x []float64, mean, std float64) []float64 {
	z := make([]float64, len(x))
	if std == 0 {
		return z
	}
	for i, v := range x {
		z[i] = (v - mean) / std
	}
	return z
}
