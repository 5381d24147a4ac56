package series

import (
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/23skdu/supermass/internal/errors"
)

// ProfileRecord is one row of a distance profile written to Parquet.
type ProfileRecord struct {
	Offset   int64   `parquet:"offset"`
	Distance float64 `parquet:"distance"`
}

// ReadParquet reads the "value" column of a Parquet file.
func ReadParquet(r io.ReaderAt, size int64) (TimeSeries, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return TimeSeries{}, errors.WrapIOError(err, "series.parquet", "open failed")
	}
	if _, ok := pf.Schema().Lookup("value"); !ok {
		return TimeSeries{}, errors.NewInvalidInput("series.parquet", `missing "value" column`)
	}

	pr := parquet.NewGenericReader[Record](pf)
	defer func() { _ = pr.Close() }()

	rows := make([]Record, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && err != io.EOF {
		return TimeSeries{}, errors.WrapIOError(err, "series.parquet", "read failed")
	}
	return TimeSeries{Records: rows[:n]}, nil
}

// WriteParquet writes the samples as a single "value" column.
func WriteParquet(w io.Writer, ts TimeSeries) error {
	pw := parquet.NewGenericWriter[Record](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(ts.Records); err != nil {
		_ = pw.Close()
		return errors.WrapIOError(err, "series.parquet", "write failed")
	}
	if err := pw.Close(); err != nil {
		return errors.WrapIOError(err, "series.parquet", "close failed")
	}
	return nil
}

// WriteProfileParquet writes a distance profile as (offset, distance) rows.
func WriteProfileParquet(w io.Writer, profile []float64) error {
	rows := make([]ProfileRecord, len(profile))
	for i, d := range profile {
		rows[i] = ProfileRecord{Offset: int64(i), Distance: d}
	}

	pw := parquet.NewGenericWriter[ProfileRecord](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return errors.WrapIOError(err, "series.parquet", "write profile failed")
	}
	if err := pw.Close(); err != nil {
		return errors.WrapIOError(err, "series.parquet", "close failed")
	}
	return nil
}

// ReadProfileParquet reads a profile written by WriteProfileParquet, ordered
// by offset.
func ReadProfileParquet(r io.ReaderAt, size int64) ([]float64, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errors.WrapIOError(err, "series.parquet", "open failed")
	}

	pr := parquet.NewGenericReader[ProfileRecord](pf)
	defer func() { _ = pr.Close() }()

	rows := make([]ProfileRecord, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && err != io.EOF {
		return nil, errors.WrapIOError(err, "series.parquet", "read failed")
	}

	out := make([]float64, n)
	for _, row := range rows[:n] {
		if row.Offset < 0 || row.Offset >= int64(n) {
			return nil, errors.InvalidInputf("series.parquet", "offset %d out of range", row.Offset)
		}
		out[row.Offset] = row.Distance
	}
	return out, nil
}
