package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sqlexport/exporterr"
)

func TestReadQuery_MissingFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	q, created, err := ReadQuery(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a missing file")
	}
	if q != DefaultQuery {
		t.Errorf("expected %q, got %q", DefaultQuery, q)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("query file not created: %v", err)
	}
	if string(data) != "SELECT * FROM dual\n" {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestReadQuery_TrimsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	if err := os.WriteFile(path, []byte("\n  SELECT a, b\n  FROM t ;\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	q, created, err := ReadQuery(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for an existing file")
	}
	if q != "SELECT a, b\n  FROM t" {
		t.Errorf("unexpected query: %q", q)
	}
}

func TestCleanQuery(t *testing.T) {
	cases := map[string]string{
		"SELECT 1":          "SELECT 1",
		" SELECT 1 ; ; ":    "SELECT 1",
		"SELECT ';' FROM t": "SELECT ';' FROM t",
		"":                  "",
	}
	for in, want := range cases {
		if got := CleanQuery(in); got != want {
			t.Errorf("CleanQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func noEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(k string) string { return env[k] }
	t.Cleanup(func() { lookupEnv = orig })
}

func TestLoadCredentials_MissingFileWritesPlaceholder(t *testing.T) {
	noEnv(t, nil)
	path := filepath.Join(t.TempDir(), "database.txt")
	_, err := LoadCredentials(path)
	if !errors.Is(err, exporterr.ErrCredentialsCreated) {
		t.Fatalf("expected ErrCredentialsCreated, got: %v", err)
	}
	if exporterr.ExitCode(err) != 0 {
		t.Errorf("placeholder creation must exit 0, got %d", exporterr.ExitCode(err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	for _, want := range []string{"user=123", "password=456", "dsn=localhost:1521/orcl"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("placeholder missing %q: %s", want, data)
		}
	}
}

func TestLoadCredentials_FileValues(t *testing.T) {
	noEnv(t, nil)
	path := filepath.Join(t.TempDir(), "database.txt")
	content := "user=scott\npassword=ti=ger\ndsn=db.example:1521/orcl\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Credentials{User: "scott", Password: "ti=ger", DSN: "db.example:1521/orcl", Driver: "oracle"}
	if c != want {
		t.Errorf("got %+v, want %+v", c, want)
	}
}

func TestLoadCredentials_EnvOverridesFile(t *testing.T) {
	noEnv(t, map[string]string{
		"SQLEXPORT_PASSWORD": "fromenv",
		"SQLEXPORT_DRIVER":   "SQLServer",
	})
	path := filepath.Join(t.TempDir(), "database.txt")
	if err := os.WriteFile(path, []byte("user=u\npassword=p\ndsn=h:1433\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Password != "fromenv" || c.Driver != "sqlserver" || c.User != "u" {
		t.Errorf("unexpected credentials: %+v", c)
	}
}

func TestCredentials_Require(t *testing.T) {
	c := Credentials{DSN: "x"}
	err := c.Require("user", "password", "dsn")
	if err == nil || !strings.Contains(err.Error(), "user, password") {
		t.Errorf("expected missing user and password, got: %v", err)
	}
	if exporterr.KindOf(err) != exporterr.KindConfigMissing {
		t.Errorf("expected config kind, got %s", exporterr.KindOf(err))
	}
	if err := c.Require("dsn"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("optional missing file should not fail: %v", err)
	}
	if s != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", s)
	}
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Error("expected error for required missing file")
	}

	path := filepath.Join(t.TempDir(), "sqlexport.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: 1000\nformat: csv\nout_dir: exports\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = LoadSettings(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ChunkSize != 1000 || s.Format != "csv" || s.OutDir != "exports" || s.SingleFileMax != DefaultSingleFileMax {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestSettings_Validate(t *testing.T) {
	bad := []func(*Settings){
		func(s *Settings) { s.ChunkSize = 0 },
		func(s *Settings) { s.FetchSize = -1 },
		func(s *Settings) { s.Format = "json" },
		func(s *Settings) { s.Output = "" },
	}
	for i, mutate := range bad {
		s := DefaultSettings()
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}

	good := []func(*Settings){
		func(s *Settings) { s.Format = "tsv" },
		func(s *Settings) { s.SingleFileMax = -1 },
		func(s *Settings) { s.SingleFileMax = 0 },
	}
	for i, mutate := range good {
		s := DefaultSettings()
		mutate(&s)
		if err := s.Validate(); err != nil {
			t.Errorf("case %d: unexpected validation error: %v", i, err)
		}
	}
}

func TestResolveClientDir(t *testing.T) {
	exeDir := t.TempDir()
	orig := executable
	executable = func() (string, error) { return filepath.Join(exeDir, "sqlexport"), nil }
	t.Cleanup(func() { executable = orig })

	got, err := ResolveClientDir("instantclient_test_missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got: %v", err)
	}
	if got != filepath.Join(exeDir, "instantclient_test_missing") {
		t.Errorf("expected executable-relative fallback, got %s", got)
	}

	if err := os.Mkdir(filepath.Join(exeDir, "instantclient_11_2"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err = ResolveClientDir("instantclient_11_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(exeDir, "instantclient_11_2") {
		t.Errorf("unexpected dir: %s", got)
	}

	abs := t.TempDir()
	if got, err := ResolveClientDir(abs); err != nil || got != abs {
		t.Errorf("absolute dir: got %s, %v", got, err)
	}
	if _, err := ResolveClientDir(""); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestLoadCredentials_ValuesAreLiteral(t *testing.T) {
	noEnv(t, nil)
	path := filepath.Join(t.TempDir(), "database.txt")
	content := "# connection for the nightly export\n" +
		"notakeyvalue\n" +
		"\n" +
		"  user = scott  \n" +
		"password=p$ECRET1 #x\n" +
		"dsn=db.example:1521/orcl\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.User != "scott" {
		t.Errorf("expected trimmed user, got %q", c.User)
	}
	if c.Password != "p$ECRET1 #x" {
		t.Errorf("expected literal password, got %q", c.Password)
	}
	if c.DSN != "db.example:1521/orcl" {
		t.Errorf("unexpected dsn %q", c.DSN)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("missing .env must not fail: %v", err)
	}

	t.Cleanup(func() { os.Unsetenv("SQLEXPORT_DOTENV_CHECK") })
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLEXPORT_DOTENV_CHECK=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("SQLEXPORT_DOTENV_CHECK"); got != "loaded" {
		t.Errorf("expected .env value in environment, got %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("notakeyvalue\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(); err == nil || !strings.Contains(err.Error(), ".env") {
		t.Errorf("expected a parse error for a malformed .env, got: %v", err)
	}
}
