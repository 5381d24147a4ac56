package memory

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
)

func TestTrackingAllocator_Balance(t *testing.T) {
	a := NewTrackingAllocator(memory.NewGoAllocator())

	b := a.Allocate(128)
	assert.Equal(t, int64(128), a.InUse())

	b = a.Reallocate(512, b)
	assert.Equal(t, int64(512), a.InUse())
	assert.Equal(t, int64(512), a.Allocated())

	a.Free(b)
	assert.Equal(t, int64(0), a.InUse())
	assert.Equal(t, int64(512), a.Allocated())
}

func TestTrackingAllocator_ArrowBuilder(t *testing.T) {
	a := NewTrackingAllocator(nil)

	bld := array.NewFloat64Builder(a)
	bld.AppendValues([]float64{1, 2, 3, 4}, nil)
	arr := bld.NewFloat64Array()
	bld.Release()
	assert.Greater(t, a.InUse(), int64(0))

	arr.Release()
	assert.Equal(t, int64(0), a.InUse())
}
