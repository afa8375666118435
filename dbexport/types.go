package dbexport

import (
	"context"
	"database/sql"
	"fmt"

	"sqlexport/exporterr"
)

// Rows is a minimal interface for *sql.Rows and test wrappers
// Used for dependency injection and testability in the row source.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Columns() ([]string, error)
	Close() error
	Err() error
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Row is one result row, values in column order.
type Row []any

// Chunk is a batch of rows sharing one column list.
type Chunk struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows in the chunk.
func (c Chunk) Len() int { return len(c.Rows) }

// RowError reports a single row that could not be read. The pipeline logs
// and skips it.
type RowError struct {
	Index  int64 // zero-based position in the stream
	Values Row   // raw values when available
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return &exporterr.Error{Kind: exporterr.KindRowProcessing, Op: "read row", Err: e.Err}
}
