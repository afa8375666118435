package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// executable is a package-level variable to allow test injection.
var executable = os.Executable

// ResolveClientDir locates the native client directory. Absolute paths are
// used as given. Relative paths are tried next to the running executable
// first, then in the working directory, which covers binaries built into a
// temporary directory by `go run`. When neither exists the executable-relative
// path is returned together with an error wrapping os.ErrNotExist.
func ResolveClientDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("client directory: %w", os.ErrNotExist)
	}
	if filepath.IsAbs(dir) {
		if isDir(dir) {
			return dir, nil
		}
		return dir, fmt.Errorf("client directory %s: %w", dir, os.ErrNotExist)
	}

	var candidates []string
	if exe, err := executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), dir))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, dir))
	}
	for _, c := range candidates {
		if isDir(c) {
			return c, nil
		}
	}
	fallback := dir
	if len(candidates) > 0 {
		fallback = candidates[0]
	}
	return fallback, fmt.Errorf("client directory %s: %w", fallback, os.ErrNotExist)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
