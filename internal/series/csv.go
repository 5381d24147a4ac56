package series

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/23skdu/supermass/internal/errors"
)

// ReadCSV reads one sample per row from the first column. A first row that
// does not parse as a number is treated as a header.
func ReadCSV(r io.Reader) (TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var ts TimeSeries
	for row := 0; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return TimeSeries{}, errors.WrapIOError(err, "series.csv", "read failed").WithContext("row", row)
		}
		if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			if row == 0 {
				continue
			}
			return TimeSeries{}, errors.InvalidInputf("series.csv", "row %d: %q is not a number", row, fields[0])
		}
		ts.Records = append(ts.Records, Record{Value: v})
	}
	return ts, nil
}

// WriteCSV writes one sample per row under a "value" header.
func WriteCSV(w io.Writer, ts TimeSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"value"}); err != nil {
		return errors.WrapIOError(err, "series.csv", "write failed")
	}
	for _, r := range ts.Records {
		if err := cw.Write([]string{strconv.FormatFloat(r.Value, 'g', -1, 64)}); err != nil {
			return errors.WrapIOError(err, "series.csv", "write failed")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIOError(err, "series.csv", "flush failed")
	}
	return nil
}
