package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"sqlexport/exporterr"
)

// DefaultDriver is used when the credential file names no driver.
const DefaultDriver = "oracle"

// placeholderCredentials is written when the credential file is missing.
const placeholderCredentials = "user=123\npassword=456\ndsn=localhost:1521/orcl\n"

// Credentials holds the database connection settings.
type Credentials struct {
	User      string
	Password  string
	DSN       string
	Driver    string
	ClientDir string
}

// lookupEnv is a package-level variable to allow test injection.
var lookupEnv = os.Getenv

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}
	return nil
}

// LoadCredentials reads key=value lines from path. Environment variables
// SQLEXPORT_USER, SQLEXPORT_PASSWORD, SQLEXPORT_DSN, SQLEXPORT_DRIVER and
// SQLEXPORT_CLIENT_DIR (see LoadDotEnv) override the file.
//
// A missing file is replaced by a placeholder and exporterr.ErrCredentialsCreated
// is returned: the caller must stop without connecting.
func LoadCredentials(path string) (Credentials, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if werr := os.WriteFile(path, []byte(placeholderCredentials), 0o600); werr != nil {
			return Credentials{}, exporterr.ConfigMissing("credentials", fmt.Errorf("error creating %s: %w", path, werr))
		}
		return Credentials{}, exporterr.ErrCredentialsCreated
	}
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, exporterr.ConfigMissing("credentials", fmt.Errorf("error reading %s: %w", path, err))
	}
	values, err := parseKeyValues(f)
	f.Close()
	if err != nil {
		return Credentials{}, exporterr.ConfigMissing("credentials", fmt.Errorf("error reading %s: %w", path, err))
	}

	get := func(key, envVar string) string {
		if v := strings.TrimSpace(lookupEnv(envVar)); v != "" {
			return v
		}
		return strings.TrimSpace(values[key])
	}
	c := Credentials{
		User:      get("user", "SQLEXPORT_USER"),
		Password:  get("password", "SQLEXPORT_PASSWORD"),
		DSN:       get("dsn", "SQLEXPORT_DSN"),
		Driver:    strings.ToLower(get("driver", "SQLEXPORT_DRIVER")),
		ClientDir: get("client_dir", "SQLEXPORT_CLIENT_DIR"),
	}
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	return c, nil
}

// Require returns a ConfigMissing error naming every required key that is empty.
func (c Credentials) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		var v string
		switch k {
		case "user":
			v = c.User
		case "password":
			v = c.Password
		case "dsn":
			v = c.DSN
		}
		if v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return exporterr.Newf(exporterr.KindConfigMissing, "credentials",
			"missing required connection parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseKeyValues splits each line on its first '='. Values are taken
// literally: no quoting, comments or variable expansion, so passwords may
// contain '$' and '#'. Lines without '=' are ignored.
func parseKeyValues(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return values, sc.Err()
}
