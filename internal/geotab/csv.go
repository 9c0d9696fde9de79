package geotab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV reads a CSV upload into a Table. The first record is the header;
// cells stay raw strings so coercion happens once, during normalization.
// Ragged rows are tolerated (short rows read as missing cells). A file
// without a header is the one true load failure and surfaces before the
// core pipeline ever runs.
func ReadCSV(name string, r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	recs, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv %q: %w", name, err)
	}
	if len(recs) == 0 {
		return Table{}, errors.New("empty csv: missing header row")
	}

	tbl := Table{Name: name, Columns: recs[0]}
	tbl.Rows = make([][]any, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
