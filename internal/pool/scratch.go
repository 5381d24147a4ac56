// Package pool provides the scratch buffer allocators used by the FFT
// pipeline. The allocator choice affects memory reuse only, never results.
package pool

import (
	"fmt"
	"sync"

	"github.com/23skdu/supermass/internal/metrics"
)

// Kind selects an allocation strategy.
type Kind string

const (
	// KindDefault allocates fresh buffers and leaves reclamation to the GC.
	KindDefault Kind = "default"
	// KindPooled recycles buffers through size-keyed sync.Pools.
	KindPooled Kind = "pooled"
)

// Allocator hands out scratch buffers. Float64s always returns a zeroed
// slice; Complex128s may return dirty contents and is meant for buffers that
// are fully overwritten. Implementations are safe for concurrent use.
type Allocator interface {
	Float64s(n int) []float64
	Complex128s(n int) []complex128
	PutFloat64s(s []float64)
	PutComplex128s(s []complex128)
}

// New returns the allocator for kind.
func New(kind Kind) (Allocator, error) {
	switch kind {
	case KindDefault, "":
		return HeapAllocator{}, nil
	case KindPooled:
		return NewSlicePool(), nil
	default:
		return nil, fmt.Errorf("unknown allocator %q", kind)
	}
}

// HeapAllocator allocates with make and drops returned buffers.
type HeapAllocator struct{}

func (HeapAllocator) Float64s(n int) []float64       { return make([]float64, n) }
func (HeapAllocator) Complex128s(n int) []complex128 { return make([]complex128, n) }
func (HeapAllocator) PutFloat64s([]float64)          {}
func (HeapAllocator) PutComplex128s([]complex128)    {}

// SlicePool pools float64 and complex128 slices keyed by length. Transform
// sizes repeat across chunks and calls, so a handful of keys covers a run.
type SlicePool struct {
	mu   sync.RWMutex
	f64  map[int]*sync.Pool
	c128 map[int]*sync.Pool
}

// NewSlicePool creates an empty pool.
func NewSlicePool() *SlicePool {
	return &SlicePool{
		f64:  make(map[int]*sync.Pool),
		c128: make(map[int]*sync.Pool),
	}
}

func (p *SlicePool) bucket(m map[int]*sync.Pool, n int) *sync.Pool {
	p.mu.RLock()
	b, ok := m[n]
	p.mu.RUnlock()
	if ok {
		return b
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok = m[n]; !ok {
		// No New func - enables hit/miss tracking
		b = &sync.Pool{}
		m[n] = b
	}
	return b
}

// Float64s retrieves a zeroed slice of length n.
func (p *SlicePool) Float64s(n int) []float64 {
	if ptr := p.bucket(p.f64, n).Get(); ptr != nil {
		metrics.ScratchPoolTotal.WithLabelValues("float64", "hit").Inc()
		s := *(ptr.(*[]float64))
		clear(s)
		return s
	}
	metrics.ScratchPoolTotal.WithLabelValues("float64", "miss").Inc()
	return make([]float64, n)
}

// Complex128s retrieves a slice of length n with unspecified contents.
func (p *SlicePool) Complex128s(n int) []complex128 {
	if ptr := p.bucket(p.c128, n).Get(); ptr != nil {
		metrics.ScratchPoolTotal.WithLabelValues("complex128", "hit").Inc()
		return *(ptr.(*[]complex128))
	}
	metrics.ScratchPoolTotal.WithLabelValues("complex128", "miss").Inc()
	return make([]complex128, n)
}

// PutFloat64s returns a slice to the pool
func (p *SlicePool) PutFloat64s(s []float64) {
	if len(s) == 0 {
		return
	}
	p.bucket(p.f64, len(s)).Put(&s)
}

// PutComplex128s returns a slice to the pool
func (p *SlicePool) PutComplex128s(s []complex128) {
	if len(s) == 0 {
		return
	}
	p.bucket(p.c128, len(s)).Put(&s)
}
