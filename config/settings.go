package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for a run.
const (
	DefaultChunkSize     = 200_000
	DefaultSingleFileMax = 500_000
	DefaultFetchSize     = 10_000
	DefaultQueryFile     = "params.txt"
	DefaultDBFile        = "database.txt"
	DefaultOutput        = "output"
	DefaultFormat        = "xlsx"
	DefaultClientDir     = "instantclient_11_2"
	DefaultSheet         = "Sheet1"
	DefaultSettingsFile  = "sqlexport.yaml"
)

// Settings are the tunables of a run. Every field can also be set by a flag.
type Settings struct {
	QueryFile      string `yaml:"query_file"`
	DBFile         string `yaml:"db_file"`
	Output         string `yaml:"output"`
	Format         string `yaml:"format"`
	OutDir         string `yaml:"out_dir"`
	Sheet          string `yaml:"sheet"`
	ChunkSize      int    `yaml:"chunk_size"`
	SingleFileMax  int64  `yaml:"single_file_max"` // 0 selects the default, negative always splits
	FetchSize      int    `yaml:"fetch_size"`
	ClientDir      string `yaml:"client_dir"`
	LogDir         string `yaml:"log_dir"`
	LogLevel       string `yaml:"log_level"`
	MetricsFile    string `yaml:"metrics_file"`
	SkipValidation bool   `yaml:"skip_validation"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		QueryFile:     DefaultQueryFile,
		DBFile:        DefaultDBFile,
		Output:        DefaultOutput,
		Format:        DefaultFormat,
		Sheet:         DefaultSheet,
		ChunkSize:     DefaultChunkSize,
		SingleFileMax: DefaultSingleFileMax,
		FetchSize:     DefaultFetchSize,
		ClientDir:     DefaultClientDir,
		LogLevel:      "info",
	}
}

// LoadSettings overlays the YAML file at path on the defaults. A missing file
// is not an error when optional is true.
func LoadSettings(path string, optional bool) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			return s, nil
		}
		return s, fmt.Errorf("error reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("error parsing settings file %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", s.ChunkSize)
	}
	if s.FetchSize <= 0 {
		return fmt.Errorf("fetch_size must be positive, got %d", s.FetchSize)
	}
	switch s.Format {
	case "xlsx", "csv", "tsv":
	default:
		return fmt.Errorf("unsupported format %q (want xlsx, csv or tsv)", s.Format)
	}
	if s.Output == "" {
		return fmt.Errorf("output base name must not be empty")
	}
	return nil
}
