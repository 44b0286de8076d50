package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yurifrl/finsight/pkg/models"
)

type Record interface {
	CSVFields() []string
}

type FilterFunc[T Record] func(T) bool

// Create writes header followed by every record that passes filter.
// A nil filter keeps everything.
func Create[T Record](header []string, records []T, filter FilterFunc[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if filter != nil && !filter(r) {
			continue
		}
		if err := w.Write(r.CSVFields()); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRowSet writes raw rows in header order, for handing a ledger to
// tools that expect the source columns untouched.
func EncodeRowSet(set models.RowSet) ([]byte, error) {
	header := set.Header
	if len(header) == 0 {
		header = models.HeaderOf(set.Rows)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(header))
	for i, row := range set.Rows {
		for j, name := range header {
			record[j] = row[name]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
