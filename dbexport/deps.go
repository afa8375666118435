package dbexport

import (
	"context"
	"database/sql"
)

// Package-level variables to allow test injection.
var sqlOpen = sql.Open

var queryRows = func(ctx context.Context, q Querier, query string, args ...any) (Rows, error) {
	return q.QueryContext(ctx, query, args...)
}
