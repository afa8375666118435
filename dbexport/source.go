package dbexport

import (
	"context"
	"fmt"
	"io"

	"sqlexport/exporterr"
)

// Source is a forward-only cursor over the result of one query. Count must
// be called before Open; the count is not checked against the rows streamed.
type Source struct {
	q         Querier
	dialect   Dialect
	fetchSize int

	rows  Rows
	cols  []string
	total int64
	index int64
}

// NewSource creates a Source reading through q.
func NewSource(q Querier, d Dialect, fetchSize int) *Source {
	return &Source{q: q, dialect: d, fetchSize: fetchSize}
}

// Count runs the count-wrapped form of query and remembers the result.
func (s *Source) Count(ctx context.Context, query string) (int64, error) {
	var total int64
	if err := s.q.QueryRowContext(ctx, s.dialect.CountQuery(query)).Scan(&total); err != nil {
		return 0, exporterr.Query("count rows", fmt.Errorf("could not get total row count: %w", err))
	}
	s.total = total
	return total, nil
}

// TotalRows returns the value obtained by Count.
func (s *Source) TotalRows() int64 { return s.total }

// Open executes query. Any cursor left from a previous Open is closed first.
func (s *Source) Open(ctx context.Context, query string) error {
	if err := s.Close(); err != nil {
		return err
	}
	rows, err := queryRows(ctx, s.q, query, s.dialect.QueryArgs(s.fetchSize)...)
	if err != nil {
		return exporterr.Query("open cursor", fmt.Errorf("error querying rows: %w", err))
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return exporterr.Query("open cursor", fmt.Errorf("error getting columns: %w", err))
	}
	s.rows, s.cols, s.index = rows, cols, 0
	return nil
}

// Columns returns the column names of the open cursor.
func (s *Source) Columns() []string { return s.cols }

// Next returns the next row. It returns io.EOF after the last row and a
// *RowError when only the current row is unreadable; any other error ends
// the stream.
func (s *Source) Next() (Row, error) {
	if s.rows == nil {
		return nil, io.EOF
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, exporterr.Query("fetch rows", fmt.Errorf("row error: %w", err))
		}
		return nil, io.EOF
	}
	idx := s.index
	s.index++
	vals, err := ScanRowValues(s.rows, len(s.cols))
	if err != nil {
		return nil, &RowError{Index: idx, Values: vals, Err: err}
	}
	return vals, nil
}

// Close releases the cursor. It is safe to call more than once.
func (s *Source) Close() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}
