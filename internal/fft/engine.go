// Package fft wraps the gonum real FFT for the sliding dot product. It owns
// transform size selection, inverse normalization and the reuse of plans.
package fft

import (
	"math/bits"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/metrics"
)

// DefaultMaxSize bounds the transform length (2^30 samples, 8 GiB per real
// buffer) unless overridden with WithMaxSize.
const DefaultMaxSize = 1 << 30

// Engine selects transform sizes and hands out plans. Plans are kept in
// per-size pools: a *fourier.FFT carries its own work area and must not be
// used by two goroutines at once, so every Acquire returns a plan that is
// exclusively owned until Release.
type Engine struct {
	powerOfTwo bool
	maxSize    int

	mu    sync.RWMutex
	plans map[int]*sync.Pool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPowerOfTwo restricts transform sizes to powers of two.
func WithPowerOfTwo() Option {
	return func(e *Engine) { e.powerOfTwo = true }
}

// WithMaxSize sets the largest transform Size will accept.
func WithMaxSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

// NewEngine creates an engine with an empty plan cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxSize: DefaultMaxSize,
		plans:   make(map[int]*sync.Pool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Size returns the transform length to use for a linear convolution needing
// at least minLen output samples.
func (e *Engine) Size(minLen int) (int, error) {
	if minLen < 1 {
		return 0, errors.InvalidInputf("fft.size", "transform length %d must be positive", minLen)
	}
	if minLen > e.maxSize {
		return 0, errors.NewResourceExhausted("fft.size", "transform length exceeds limit").
			WithContext("required", minLen).
			WithContext("limit", e.maxSize)
	}

	n := GoodSize(minLen)
	if e.powerOfTwo {
		n = NextPowerOfTwo(minLen)
	}
	if n > e.maxSize {
		n = minLen
	}
	return n, nil
}

// Acquire returns a plan of length n from the cache, creating one on a miss.
func (e *Engine) Acquire(n int) *Plan {
	bucket := e.bucket(n)
	if v := bucket.Get(); v != nil {
		metrics.FFTPlanCacheTotal.WithLabelValues("hit").Inc()
		return v.(*Plan)
	}
	metrics.FFTPlanCacheTotal.WithLabelValues("miss").Inc()
	metrics.FFTSize.Observe(float64(n))
	return &Plan{
		fft:   fourier.NewFFT(n),
		n:     n,
		scale: 1 / float64(n),
		owner: bucket,
	}
}

func (e *Engine) bucket(n int) *sync.Pool {
	e.mu.RLock()
	b, ok := e.plans[n]
	e.mu.RUnlock()
	if ok {
		return b
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok = e.plans[n]; !ok {
		b = &sync.Pool{}
		e.plans[n] = b
	}
	return b
}

// Plan is a real transform of a fixed length.
type Plan struct {
	fft   *fourier.FFT
	n     int
	scale float64
	owner *sync.Pool
}

// Len returns the transform length.
func (p *Plan) Len() int { return p.n }

// CoefficientsLen returns the number of complex coefficients a forward
// transform produces (the non-redundant half of the spectrum).
func (p *Plan) CoefficientsLen() int { return p.n/2 + 1 }

// Forward transforms seq (length Len) into dst (length CoefficientsLen). A nil
// dst is allocated.
func (p *Plan) Forward(dst []complex128, seq []float64) []complex128 {
	return p.fft.Coefficients(dst, seq)
}

// Inverse transforms coeff back into dst (length Len) and divides by Len, so
// Inverse(Forward(x)) == x up to rounding.
func (p *Plan) Inverse(dst []float64, coeff []complex128) []float64 {
	dst = p.fft.Sequence(dst, coeff)
	floats.Scale(p.scale, dst)
	return dst
}

// Release returns the plan to its engine. The plan must not be used after.
func (p *Plan) Release() {
	if p.owner != nil {
		p.owner.Put(p)
	}
}

// GoodSize returns the smallest n' >= n of the form 2^a·3^b·5^c, the lengths
// FFTPACK factorizes without falling back to a generic radix.
func GoodSize(n int) int {
	if n <= 1 {
		return 1
	}
	best := NextPowerOfTwo(n)
	for p5 := 1; p5 < best; p5 *= 5 {
		for p35 := p5; p35 < best; p35 *= 3 {
			// smallest power of two lifting p35 to at least n
			c := p35
			for c < n {
				c *= 2
			}
			if c < best {
				best = c
			}
		}
	}
	return best
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
