package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveMoving(series []float64, m int) Moving {
	windows := len(series) - m + 1
	mv := Moving{Mean: make([]float64, windows), StdDev: make([]float64, windows)}
	for i := 0; i < windows; i++ {
		var sum float64
		for _, v := range series[i : i+m] {
			sum += v
		}
		mean := sum / float64(m)
		var ss float64
		for _, v := range series[i : i+m] {
			ss += (v - mean) * (v - mean)
		}
		mv.Mean[i] = mean
		mv.StdDev[i] = math.Sqrt(ss / float64(m))
	}
	return mv
}

func TestNewMoving_Basic(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	mv := NewMoving(series, 2)

	require.Equal(t, 4, mv.Len())
	assert.InDeltaSlice(t, []float64{1.5, 2.5, 3.5, 4.5}, mv.Mean, 1e-12)
	for _, s := range mv.StdDev {
		assert.InDelta(t, 0.5, s, 1e-12)
	}
}

func TestNewMoving_WholeSeries(t *testing.T) {
	series := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mv := NewMoving(series, len(series))

	require.Equal(t, 1, mv.Len())
	assert.InDelta(t, 5.0, mv.Mean[0], 1e-12)
	assert.InDelta(t, 2.0, mv.StdDev[0], 1e-12)
}

func TestNewMoving_ConstantWindowIsZero(t *testing.T) {
	series := []float64{0.1, 0.1, 0.1, 0.1, 7, 0.1, 0.1, 0.1}
	mv := NewMoving(series, 3)

	assert.Equal(t, 0.0, mv.StdDev[0])
	assert.Equal(t, 0.0, mv.StdDev[1])
	assert.Greater(t, mv.StdDev[2], 0.0)
	assert.Equal(t, 0.0, mv.StdDev[5])
}

func TestNewMoving_LongSeriesResync(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	series := make([]float64, 5*ResyncInterval+13)
	for i := range series {
		series[i] = 1e3 + rng.NormFloat64()
	}

	got := NewMoving(series, 64)
	want := naiveMoving(series, 64)
	assert.InDeltaSlice(t, want.Mean, got.Mean, 1e-9)
	assert.InDeltaSlice(t, want.StdDev, got.StdDev, 1e-6)
}

func TestNewMoving_OffsetData(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	series := make([]float64, 3*ResyncInterval+50)
	for i := range series {
		series[i] = 1e4 + rng.Float64()*1e-2
	}

	got := NewMoving(series, 32)
	want := naiveMoving(series, 32)
	for i := range want.StdDev {
		require.Greater(t, got.StdDev[i], 0.0, "window %d", i)
		assert.InEpsilon(t, want.StdDev[i], got.StdDev[i], 1e-9, "window %d", i)
		assert.InDelta(t, want.Mean[i], got.Mean[i], 1e-9, "window %d", i)
	}
}

func TestNewMoving_NearConstantWindowIsFlat(t *testing.T) {
	series := make([]float64, 80)
	for i := range series {
		series[i] = 1
	}
	series[50] = 1 + 1e-12
	m := 4
	mv := NewMoving(series, m)

	for i := 47; i <= 50; i++ {
		assert.Equal(t, 0.0, mv.StdDev[i], "window %d", i)
		assert.InDelta(t, 1.0, mv.Mean[i], 1e-12, "window %d", i)

		mean, std := MeanStd(series[i : i+m])
		assert.Equal(t, 0.0, std, "window %d", i)
		assert.InDelta(t, 1.0, mean, 1e-12)
	}
}

func TestNewMoving_FlatMatchesMeanStd(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	series := make([]float64, 600)
	for i := range series {
		switch {
		case i < 200:
			series[i] = 1e4 + rng.Float64()*1e-2
		case i < 400:
			series[i] = 1e4 + float64(i%2)*1e-9
		default:
			series[i] = -3e5
		}
	}

	for _, m := range []int{1, 3, 16, 64} {
		mv := NewMoving(series, m)
		for i := 0; i < mv.Len(); i++ {
			_, std := MeanStd(series[i : i+m])
			assert.Equal(t, std == 0, mv.StdDev[i] == 0, "m=%d window %d", m, i)
		}
	}
}

func TestFlat(t *testing.T) {
	assert.True(t, Flat(1e4, 1e-5))
	assert.False(t, Flat(1e4, 1e-3))
	assert.True(t, Flat(0, 0))
	assert.False(t, Flat(0, 1e-300))
	assert.True(t, Flat(-2, 1e-9))
}

func TestMovingInto_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		MovingInto(Moving{Mean: make([]float64, 1), StdDev: make([]float64, 1)}, []float64{1, 2, 3}, 2)
	})
}

func TestMoving_Slice(t *testing.T) {
	mv := NewMoving([]float64{1, 2, 3, 4, 5, 6}, 2)
	sub := mv.Slice(1, 3)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, mv.Mean[1], sub.Mean[0])
	assert.Equal(t, mv.StdDev[2], sub.StdDev[1])
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	mean, std = MeanStd([]float64{3, 3, 3})
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = MeanStd([]float64{42})
	assert.Equal(t, 42.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestNewMoving_ConstantAfterLargeValue(t *testing.T) {
	series := []float64{0.3, 1e8, 0.3, 0.3, 0.3, 0.3}
	mv := NewMoving(series, 3)

	assert.Greater(t, mv.StdDev[1], 0.0)
	assert.Equal(t, 0.0, mv.StdDev[2])
	assert.Equal(t, 0.3, mv.Mean[2])
	assert.Equal(t, 0.0, mv.StdDev[3])
}

func TestNewMoving_SingleSampleWindows(t *testing.T) {
	series := []float64{4, -1, 9}
	mv := NewMoving(series, 1)
	assert.Equal(t, series, mv.Mean)
	assert.Equal(t, []float64{0, 0, 0}, mv.StdDev)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(2, 2))
	assert.True(t, Equal(1e9, 1e9+1e-3))
	assert.False(t, Equal(1, 1.001))
}

func TestMovingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("matches two-pass window statistics", prop.ForAll(
		func(series []float64, m int) bool {
			if m > len(series) {
				m = len(series)
			}
			got := NewMoving(series, m)
			want := naiveMoving(series, m)
			if got.Len() != len(series)-m+1 {
				return false
			}
			for i := range want.Mean {
				if math.Abs(got.Mean[i]-want.Mean[i]) > 1e-9 {
					return false
				}
				if math.Abs(got.StdDev[i]-want.StdDev[i]) > 1e-6 {
					return false
				}
				if got.StdDev[i] < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(300, gen.Float64Range(-100, 100)),
		gen.IntRange(1, 300),
	))

	properties.TestingRun(t)
}
