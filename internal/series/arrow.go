package series

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/supermass/internal/errors"
)

var valueSchema = arrow.NewSchema(
	[]arrow.Field{{Name: "value", Type: arrow.PrimitiveTypes.Float64}},
	nil,
)

// ReadArrow reads an Arrow IPC stream. Samples come from the column named
// "value" or, failing that, the first float64 or float32 column.
func ReadArrow(r io.Reader, mem memory.Allocator) (TimeSeries, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return TimeSeries{}, errors.WrapIOError(err, "series.arrow", "open stream failed")
	}
	defer rdr.Release()

	col, err := valueColumn(rdr.Schema())
	if err != nil {
		return TimeSeries{}, err
	}

	var ts TimeSeries
	for rdr.Next() {
		rec := rdr.Record()
		switch arr := rec.Column(col).(type) {
		case *array.Float64:
			for i, v := range arr.Float64Values() {
				if arr.IsNull(i) {
					return TimeSeries{}, errors.InvalidInputf("series.arrow", "null sample at row %d", len(ts.Records))
				}
				ts.Records = append(ts.Records, Record{Value: v})
			}
		case *array.Float32:
			for i, v := range arr.Float32Values() {
				if arr.IsNull(i) {
					return TimeSeries{}, errors.InvalidInputf("series.arrow", "null sample at row %d", len(ts.Records))
				}
				ts.Records = append(ts.Records, Record{Value: float64(v)})
			}
		}
	}
	if err := rdr.Err(); err != nil {
		return TimeSeries{}, errors.WrapIOError(err, "series.arrow", "read failed")
	}
	return ts, nil
}

func valueColumn(schema *arrow.Schema) (int, error) {
	if idx := schema.FieldIndices("value"); len(idx) > 0 {
		switch schema.Field(idx[0]).Type.ID() {
		case arrow.FLOAT64, arrow.FLOAT32:
			return idx[0], nil
		}
	}
	for i, f := range schema.Fields() {
		switch f.Type.ID() {
		case arrow.FLOAT64, arrow.FLOAT32:
			return i, nil
		}
	}
	return 0, errors.NewInvalidInput("series.arrow", "no float column in schema").
		WithContext("schema", schema.String())
}

// WriteArrow writes the samples as an Arrow IPC stream with a single float64
// "value" column.
func WriteArrow(w io.Writer, ts TimeSeries, mem memory.Allocator) error {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.Reserve(len(ts.Records))
	for _, r := range ts.Records {
		b.Append(r.Value)
	}
	arr := b.NewFloat64Array()
	defer arr.Release()

	rec := array.NewRecord(valueSchema, []arrow.Array{arr}, int64(arr.Len()))
	defer rec.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(valueSchema), ipc.WithAllocator(mem))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return errors.WrapIOError(err, "series.arrow", "write failed")
	}
	if err := writer.Close(); err != nil {
		return errors.WrapIOError(err, "series.arrow", "close failed")
	}
	return nil
}
