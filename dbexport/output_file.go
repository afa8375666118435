package dbexport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sqlexport/exporterr"
)

// CSVWriter writes chunks as delimited text with a header line.
type CSVWriter struct {
	Comma rune // defaults to ','
}

func (w *CSVWriter) Ext() string {
	if w.Comma == '\t' {
		return "tsv"
	}
	return "csv"
}

// Write creates filename and writes the header and every row.
func (w *CSVWriter) Write(c Chunk, filename string) error {
	if err := w.write(c, filename); err != nil {
		return exporterr.Write(filename, err)
	}
	return nil
}

func (w *CSVWriter) write(c Chunk, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	cw := csv.NewWriter(buf)
	if w.Comma != 0 {
		cw.Comma = w.Comma
	}
	if err := cw.Write(c.Columns); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	record := make([]string, len(c.Columns))
	for i, row := range c.Rows {
		for col := range record {
			record[col] = ""
			if col < len(row) {
				record[col] = formatCell(row[col])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("error flushing rows: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("error flushing file: %w", err)
	}
	return file.Close()
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
