// Package config reads the files an export run depends on: the query file,
// the credential file, the optional settings file, and the location of the
// native database client.
package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultQuery is written to a missing query file.
const DefaultQuery = "SELECT * FROM dual"

// ReadQuery returns the trimmed query stored at path. A missing file is
// created with DefaultQuery and that query is returned with created=true.
func ReadQuery(path string) (query string, created bool, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := os.WriteFile(path, []byte(DefaultQuery+"\n"), 0o644); err != nil {
			return "", false, fmt.Errorf("error creating query file: %w", err)
		}
		created = true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", created, fmt.Errorf("error reading query file: %w", err)
	}
	return CleanQuery(string(data)), created, nil
}

// CleanQuery trims whitespace and trailing statement terminators, which break
// the count wrapper on most databases.
func CleanQuery(q string) string {
	q = strings.TrimSpace(q)
	for strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}
	return q
}
