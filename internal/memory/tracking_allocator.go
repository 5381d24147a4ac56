// Package memory meters the Arrow buffers allocated while decoding input.
package memory

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/supermass/internal/metrics"
)

// TrackingAllocator wraps a base memory.Allocator and keeps a running count of
// live bytes, mirrored to Prometheus.
type TrackingAllocator struct {
	memory.Allocator
	allocated atomic.Int64
	inUse     atomic.Int64
}

// NewTrackingAllocator wraps base. A nil base uses memory.DefaultAllocator.
func NewTrackingAllocator(base memory.Allocator) *TrackingAllocator {
	if base == nil {
		base = memory.DefaultAllocator
	}
	return &TrackingAllocator{Allocator: base}
}

func (a *TrackingAllocator) Allocate(size int) []byte {
	a.grow(size)
	metrics.ArrowBytesAllocatedTotal.Add(float64(size))
	return a.Allocator.Allocate(size)
}

// Reallocate accounts for the size difference; b's length is its old size.
func (a *TrackingAllocator) Reallocate(size int, b []byte) []byte {
	if size > len(b) {
		metrics.ArrowBytesAllocatedTotal.Add(float64(size - len(b)))
	}
	a.grow(size - len(b))
	return a.Allocator.Reallocate(size, b)
}

func (a *TrackingAllocator) Free(b []byte) {
	a.grow(-len(b))
	a.Allocator.Free(b)
}

func (a *TrackingAllocator) grow(delta int) {
	if delta > 0 {
		a.allocated.Add(int64(delta))
	}
	a.inUse.Add(int64(delta))
	metrics.ArrowBytesInUse.Add(float64(delta))
}

// Allocated returns the total bytes handed out so far.
func (a *TrackingAllocator) Allocated() int64 {
	return a.allocated.Load()
}

// InUse returns the bytes allocated and not yet freed.
func (a *TrackingAllocator) InUse() int64 {
	return a.inUse.Load()
}

var _ memory.Allocator = (*TrackingAllocator)(nil)
