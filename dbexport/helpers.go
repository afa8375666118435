package dbexport

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ScanRowValues scans the current row into a Row, converting driver types to
// string, int64, float64, bool, time.Time or nil. Scan failures and panics
// raised by driver conversions are returned as errors together with whatever
// raw values were read.
func ScanRowValues(rows Rows, ncols int) (vals Row, err error) {
	columns := make([]interface{}, ncols)
	columnPointers := make([]interface{}, ncols)
	for i := range columns {
		columnPointers[i] = &columns[i]
	}
	defer func() {
		if r := recover(); r != nil {
			vals = Row(columns)
			err = fmt.Errorf("error converting row: %v", r)
		}
	}()
	if err := rows.Scan(columnPointers...); err != nil {
		return Row(columns), fmt.Errorf("error scanning row: %w", err)
	}
	vals = make(Row, ncols)
	for i, v := range columns {
		vals[i] = NormalizeValue(v)
	}
	return vals, nil
}

// NormalizeValue maps a value returned by a database driver onto the small set
// of types the sanitizer and writers understand.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, int64, float64, bool:
		return t
	case time.Time:
		return t
	case []uint8:
		return parseNumeric(string(t))
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint:
		if uint64(t) <= 1<<63-1 {
			return int64(t)
		}
		return float64(t)
	case uint64:
		if t <= 1<<63-1 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return float64(t)
	case *big.Int:
		if t.IsInt64() {
			return t.Int64()
		}
		return t.String()
	case fmt.Stringer:
		// Decimal and NUMBER wrappers (e.g. Oracle numbers) print as plain numbers.
		return parseNumeric(t.String())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return parseNumeric(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return NormalizeValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// parseNumeric returns s as int64 or float64 when it is a plain number, else s.
// Zero-padded codes such as "007" stay text.
func parseNumeric(s string) any {
	if s == "" || hasLeadingZero(s) {
		return s
	}
	if intVal, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intVal
	}
	if floatVal, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(floatVal, 0) && !math.IsNaN(floatVal) {
		return floatVal
	}
	return s
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
