package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// WriteRecords writes one row per Record with the field names as header.
func WriteRecords(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.FieldNames()); err != nil {
		return err
	}
	fields := models.Fields()
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, f := range fields {
			row[i] = models.FormatValue(f, rec.Value(f))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate writes the group-by columns followed by the reduced statistics.
func WriteAggregate(w io.Writer, dims []models.Field, rows []models.AggregateRow) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(dims)+len(models.AggregateColumns()))
	for _, d := range dims {
		header = append(header, d.String())
	}
	header = append(header, models.AggregateColumns()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, 0, len(header))
		for _, d := range dims {
			v, ok := row.Value(d)
			if !ok {
				return fmt.Errorf("aggregate row has no value for %s", d)
			}
			line = append(line, models.FormatValue(d, v))
		}
		line = append(line, row.StatisticValues()...)
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path, including parent directories, and fills it with write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
