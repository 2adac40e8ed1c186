package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses a header-led CSV stream into records. Ragged rows are
// tolerated; short rows simply lack the trailing columns.
func ReadCSV(r io.Reader) ([]*Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == 0 {
			// Excel exports prefix the first header cell with a BOM.
			col = strings.TrimPrefix(col, "\ufeff")
		}
		header[i] = col
	}

	var recs []*Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rec := NewRecord()
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec.Set(col, row[i])
			} else {
				rec.Set(col, "")
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteCSV writes records with the canonical columns first, then every
// extra column in the order it first appeared across the set.
func WriteCSV(w io.Writer, recs []*Record) error {
	cols := unionColumns(recs)

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, rec := range recs {
		for i, col := range cols {
			row[i] = rec.Get(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// unionColumns merges every record's columns behind the canonical set.
func unionColumns(recs []*Record) []string {
	cols := append([]string(nil), canonicalColumns...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, rec := range recs {
		for _, c := range rec.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
