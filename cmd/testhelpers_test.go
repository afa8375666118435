package cmd

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
)

// containsAll returns true if all substrings in subs are present in s.
func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// runCLI executes the root command with args after resetting every flag, so
// values from earlier tests do not leak. It returns the console output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetArgs([]string{})
	return buf.String(), err
}

// workspace is a temporary directory holding the files of one run.
type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) *workspace {
	for _, env := range []string{"SQLEXPORT_USER", "SQLEXPORT_PASSWORD", "SQLEXPORT_DSN", "SQLEXPORT_DRIVER", "SQLEXPORT_CLIENT_DIR"} {
		t.Setenv(env, "")
	}
	return &workspace{dir: t.TempDir()}
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

func (w *workspace) write(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(w.path(name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// args returns the flags pointing every input and output into the workspace.
func (w *workspace) args(extra ...string) []string {
	return append([]string{
		"--query-file", w.path("params.txt"),
		"--db-file", w.path("database.txt"),
		"--out-dir", w.path("out"),
		"--log-dir", w.path("logs"),
		"--quiet",
	}, extra...)
}

// seedSQLite creates a sqlite database with n rows and points the credential
// file at it.
func (w *workspace) seedSQLite(t *testing.T, n int) {
	t.Helper()
	dbPath := w.path("src.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open sqlite3: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE items (id INTEGER, name TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	for i := 1; i <= n; i++ {
		if _, err := db.Exec("INSERT INTO items (id, name) VALUES (?, ?)", i, fmt.Sprintf("item%d", i)); err != nil {
			t.Fatalf("failed to insert row: %v", err)
		}
	}
	w.write(t, "database.txt", "driver=sqlite3\ndsn="+dbPath+"\n")
}

func (w *workspace) logContent(t *testing.T) string {
	t.Helper()
	matches, err := filepath.Glob(w.path("logs/log_*.log"))
	if err != nil || len(matches) == 0 {
		t.Fatalf("no log file written: %v", err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	return string(data)
}
