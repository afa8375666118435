package dbexport

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// fakeRows replays fixed data and fails Scan for the indexes in failAt.
type fakeRows struct {
	cols   []string
	data   [][]any
	failAt map[int]error
	panics map[int]bool
	err    error
	pos    int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	i := r.pos - 1
	if r.panics[i] {
		panic("bad conversion")
	}
	if err, ok := r.failAt[i]; ok {
		return err
	}
	for j, d := range dest {
		*(d.(*interface{})) = r.data[i][j]
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }
func (r *fakeRows) Close() error               { r.closed = true; return nil }
func (r *fakeRows) Err() error                 { return r.err }

// useFakeRows makes every Source.Open return rows.
func useFakeRows(t *testing.T, rows Rows) {
	t.Helper()
	orig := queryRows
	queryRows = func(_ context.Context, _ Querier, _ string, _ ...any) (Rows, error) { return rows, nil }
	t.Cleanup(func() { queryRows = orig })
}

// useMockDB makes the pipeline connect to a sqlmock database.
func useMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() {
		sqlOpen = orig
		db.Close()
	})
	return mock, db
}

// seedItems creates a sqlite database with n rows in table items.
// Every third row has a NULL price and names carry a unit separator.
func seedItems(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE items (id INTEGER, name TEXT, price REAL)")
	require.NoError(t, err)
	tx, err := db.Begin()
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		var price any = float64(i) + 0.5
		if i%3 == 0 {
			price = nil
		}
		_, err = tx.Exec("INSERT INTO items (id, name, price) VALUES (?, ?, ?)", i, fmt.Sprintf("item\x1f%d", i), price)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
	return path
}
