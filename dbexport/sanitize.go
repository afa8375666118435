package dbexport

import (
	"strconv"
	"strings"
	"time"
)

// unitSeparator is stripped from every text value; spreadsheet XML rejects it.
const unitSeparator = "\x1f"

// ColumnKind classifies a column for null filling.
type ColumnKind int

const (
	// KindText columns get "" for nulls and lose U+001F characters.
	KindText ColumnKind = iota
	// KindNumeric columns get 0 for nulls.
	KindNumeric
)

func (k ColumnKind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// ClassifyColumns infers each column's kind from the values present in this
// chunk only. A column is numeric when it has at least one non-null value and
// all non-null values are numbers; everything else, including all-null
// columns, is text. The same column may classify differently in two chunks.
func ClassifyColumns(c Chunk) []ColumnKind {
	kinds := make([]ColumnKind, len(c.Columns))
	for col := range c.Columns {
		seen, numeric := false, true
		for _, row := range c.Rows {
			if col >= len(row) || row[col] == nil {
				continue
			}
			seen = true
			if !isNumber(row[col]) {
				numeric = false
				break
			}
		}
		if seen && numeric {
			kinds[col] = KindNumeric
		}
	}
	return kinds
}

// Sanitize returns a copy of c with nulls replaced by their column default
// and U+001F removed from text. The input chunk is not modified.
func Sanitize(c Chunk) Chunk {
	kinds := ClassifyColumns(c)
	zeros := make([]any, len(kinds))
	for col, k := range kinds {
		if k == KindNumeric {
			zeros[col] = numericZero(c, col)
		}
	}

	out := Chunk{
		Columns: append([]string(nil), c.Columns...),
		Rows:    make([]Row, len(c.Rows)),
	}
	for i, row := range c.Rows {
		clean := make(Row, len(c.Columns))
		for col, kind := range kinds {
			var v any
			if col < len(row) {
				v = row[col]
			}
			if kind == KindNumeric {
				if v == nil {
					v = zeros[col]
				}
				clean[col] = v
				continue
			}
			clean[col] = textValue(v)
		}
		out.Rows[i] = clean
	}
	return out
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64, int, int32, float32:
		return true
	}
	return false
}

// numericZero is float64(0) for columns holding any float, else int64(0).
func numericZero(c Chunk, col int) any {
	for _, row := range c.Rows {
		if col >= len(row) {
			continue
		}
		switch row[col].(type) {
		case float64, float32:
			return float64(0)
		}
	}
	return int64(0)
}

func textValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(t, unitSeparator, "")
	case []byte:
		return strings.ReplaceAll(string(t), unitSeparator, "")
	case time.Time:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return v
	}
}
