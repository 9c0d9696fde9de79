// Package geotab turns raw tabular uploads into range-validated,
// attribute-enriched point datasets.
package geotab

import (
	"strconv"
	"strings"
)

// Table is a raw tabular dataset as uploaded: ordered named columns and rows
// of heterogeneous cells (numbers, text, missing markers). Cells are any of
// nil, string, float64, float32, int, int64. A Table is never mutated after
// it is read.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Cell returns the value of column col in row, or nil when the row is too
// short. Rows shorter than the header are common in hand-edited files.
func (t Table) Cell(row int, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// ColumnIndex returns the index of the first column matching name
// case-insensitively, or -1.
func (t Table) ColumnIndex(name string) int {
	name = strings.ToLower(name)
	for i, c := range t.Columns {
		if strings.ToLower(c) == name {
			return i
		}
	}
	return -1
}

// sentinels treated as absent values, matching what loaders commonly emit
// for empty cells.
var missingMarkers = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "nan": {}, "none": {},
}

// isMissing reports whether v represents an absent value.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, miss := missingMarkers[strings.ToLower(strings.TrimSpace(s))]
	return miss
}

// coerce attempts numeric coercion of a cell of unknown representation.
func coerce(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// display returns the presentation form of a cell, false when absent.
func display(v any) (string, bool) {
	if isMissing(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
