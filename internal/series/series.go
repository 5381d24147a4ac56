// Package series loads univariate time series from CSV, Parquet and Arrow IPC
// files and writes distance profiles back out as Parquet.
package series

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/memory"
)

// Record is a single sample.
type Record struct {
	Value float64 `parquet:"value"`
}

// TimeSeries is an ordered sequence of samples.
type TimeSeries struct {
	Name    string
	Records []Record
}

// FromValues wraps raw samples.
func FromValues(name string, values []float64) TimeSeries {
	recs := make([]Record, len(values))
	for i, v := range values {
		recs[i] = Record{Value: v}
	}
	return TimeSeries{Name: name, Records: recs}
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int {
	return len(ts.Records)
}

// Values returns the samples as a new slice.
func (ts TimeSeries) Values() []float64 {
	out := make([]float64, len(ts.Records))
	for i, r := range ts.Records {
		out[i] = r.Value
	}
	return out
}

// Validate rejects empty series and non-finite samples.
func (ts TimeSeries) Validate() error {
	if len(ts.Records) == 0 {
		return errors.NewInvalidInput("series.validate", "series is empty").WithContext("name", ts.Name)
	}
	for i, r := range ts.Records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return errors.InvalidInputf("series.validate", "sample %d is not finite", i).WithContext("name", ts.Name)
		}
	}
	return nil
}

// Format identifies an on-disk encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatArrow   Format = "arrow"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".arrow", ".arrows", ".ipc":
		return FormatArrow, nil
	default:
		return "", errors.InvalidInputf("series.load", "unsupported file extension %q", filepath.Ext(path)).
			WithContext("path", path)
	}
}

// Load reads the series stored at path. The encoding is chosen by extension.
func Load(path string) (TimeSeries, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return TimeSeries{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return TimeSeries{}, errors.WrapIOError(err, "series.load", "open failed").WithContext("path", path)
	}
	defer func() { _ = f.Close() }()

	var ts TimeSeries
	switch format {
	case FormatCSV:
		ts, err = ReadCSV(f)
	case FormatParquet:
		var fi os.FileInfo
		fi, err = f.Stat()
		if err != nil {
			return TimeSeries{}, errors.WrapIOError(err, "series.load", "stat failed").WithContext("path", path)
		}
		ts, err = ReadParquet(f, fi.Size())
	case FormatArrow:
		ts, err = ReadArrow(f, memory.NewTrackingAllocator(nil))
	}
	if err != nil {
		return TimeSeries{}, err
	}

	ts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ts, ts.Validate()
}
