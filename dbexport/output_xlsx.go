package dbexport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sqlexport/exporterr"
)

// ChunkWriter serializes one chunk to one file, replacing any existing file.
type ChunkWriter interface {
	Write(c Chunk, filename string) error
	// Ext is the file extension without the dot.
	Ext() string
}

// NewChunkWriter returns the writer for format ("xlsx", "csv" or "tsv").
func NewChunkWriter(format, sheet string) (ChunkWriter, error) {
	switch format {
	case "", "xlsx":
		return &XLSXWriter{Sheet: sheet}, nil
	case "csv":
		return &CSVWriter{Comma: ','}, nil
	case "tsv":
		return &CSVWriter{Comma: '\t'}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// XLSXWriter writes chunks as single-sheet Excel workbooks.
type XLSXWriter struct {
	Sheet string // defaults to Sheet1
}

func (w *XLSXWriter) Ext() string { return "xlsx" }

// Write streams the header row and all values to filename.
func (w *XLSXWriter) Write(c Chunk, filename string) error {
	if err := writeXLSX(c, filename, w.Sheet); err != nil {
		return exporterr.Write(filename, err)
	}
	return nil
}

func writeXLSX(c Chunk, filename, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(c.Columns))
	for i, col := range c.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range c.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	return f.SaveAs(filename)
}
