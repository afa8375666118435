// sqlexport exports the result of a SQL query to spreadsheet files.
//
// Usage:
//
//	sqlexport [export] [flags]
//	  Run the query in params.txt against the database in database.txt and
//	  write output.xlsx, or output_001.xlsx, output_002.xlsx, ... for large results
//	sqlexport plan [flags]
//	  Count the rows and list the files an export would write
//	sqlexport version
//	  Print the version number
package main

import (
	"sqlexport/cmd"

	_ "github.com/alexbrainman/odbc"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

func main() {
	cmd.Execute()
}
