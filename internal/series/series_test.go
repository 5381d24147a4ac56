package series

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/supermass/internal/errors"
	trackmem "github.com/23skdu/supermass/internal/memory"
)

var sample = []float64{10, 3, 2, 3, 4.5, 6, 0, -1}

func TestTimeSeries_Values(t *testing.T) {
	ts := FromValues("s", sample)
	assert.Equal(t, len(sample), ts.Len())
	assert.Equal(t, sample, ts.Values())
	assert.NoError(t, ts.Validate())
}

func TestTimeSeries_Validate(t *testing.T) {
	assert.ErrorIs(t, TimeSeries{}.Validate(), errors.ErrInvalidInput)
	assert.ErrorIs(t, FromValues("nan", []float64{1, math.NaN()}).Validate(), errors.ErrInvalidInput)
	assert.ErrorIs(t, FromValues("inf", []float64{math.Inf(-1)}).Validate(), errors.ErrInvalidInput)
}

func TestReadCSV(t *testing.T) {
	ts, err := ReadCSV(strings.NewReader("value,label\n1.5,a\n-2,b\n\n3e2,c\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 300}, ts.Values())

	ts, err = ReadCSV(strings.NewReader("1\n2\n3\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, ts.Values())

	_, err = ReadCSV(strings.NewReader("1\nabc\n"))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, FromValues("s", sample)))

	ts, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample, ts.Values())
}

func TestParquet_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, FromValues("s", sample)))

	ts, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, sample, ts.Values())
}

func TestParquet_MissingValueColumn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfileParquet(&buf, []float64{1, 2}))

	_, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestProfileParquet_RoundTrip(t *testing.T) {
	profile := []float64{0.5, 0, 1.25, math.MaxFloat64}

	var buf bytes.Buffer
	require.NoError(t, WriteProfileParquet(&buf, profile))

	got, err := ReadProfileParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestArrow_RoundTrip(t *testing.T) {
	mem := memory.NewGoAllocator()

	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, FromValues("s", sample), mem))

	ts, err := ReadArrow(&buf, mem)
	require.NoError(t, err)
	assert.Equal(t, sample, ts.Values())
}

func TestArrow_TrackedAllocator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, FromValues("s", sample), memory.NewGoAllocator()))

	alloc := trackmem.NewTrackingAllocator(nil)
	ts, err := ReadArrow(&buf, alloc)
	require.NoError(t, err)
	assert.Equal(t, sample, ts.Values())
	assert.Greater(t, alloc.Allocated(), int64(0))
}

func TestArrow_Float32Column(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "reading", Type: arrow.PrimitiveTypes.Float32},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{0, 1, 2}, nil)
	b.Field(1).(*array.Float32Builder).AppendValues([]float32{1.5, 2.5, -4}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	ts, err := ReadArrow(&buf, mem)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, -4}, ts.Values())
}

func TestArrow_NoFloatColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int32}}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	_, err := ReadArrow(&buf, mem)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	ts := FromValues("s", sample)

	write := func(name string, fn func(*os.File) error) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, fn(f))
		require.NoError(t, f.Close())
		return path
	}

	paths := []string{
		write("a.csv", func(f *os.File) error { return WriteCSV(f, ts) }),
		write("b.parquet", func(f *os.File) error { return WriteParquet(f, ts) }),
		write("c.arrow", func(f *os.File) error { return WriteArrow(f, ts, memory.NewGoAllocator()) }),
	}
	for _, p := range paths {
		got, err := Load(p)
		require.NoError(t, err, p)
		assert.Equal(t, sample, got.Values(), p)
		assert.NotEmpty(t, got.Name)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "series.json"))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("value\n"), 0o600))
	_, err = Load(empty)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
