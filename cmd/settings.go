package cmd

import (
	"github.com/spf13/cobra"

	"sqlexport/config"
	"sqlexport/dbexport"
	"sqlexport/exporterr"
)

// loadSettings overlays explicitly set flags on the settings file. The file
// is optional unless --config was given.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	f := cmd.Flags()
	s, err := config.LoadSettings(flagConfig, !f.Changed("config"))
	if err != nil {
		return s, exporterr.ConfigMissing("settings", err)
	}
	if f.Changed("query-file") {
		s.QueryFile = flagQueryFile
	}
	if f.Changed("db-file") {
		s.DBFile = flagDBFile
	}
	if f.Changed("output") {
		s.Output = flagOutput
	}
	if f.Changed("format") {
		s.Format = flagFormat
	}
	if f.Changed("out-dir") {
		s.OutDir = flagOutDir
	}
	if f.Changed("sheet") {
		s.Sheet = flagSheet
	}
	if f.Changed("chunk-size") {
		s.ChunkSize = flagChunkSize
	}
	if f.Changed("single-file-max") {
		s.SingleFileMax = flagSingleFileMax
	}
	if f.Changed("fetch-size") {
		s.FetchSize = flagFetchSize
	}
	if f.Changed("client-dir") {
		s.ClientDir = flagClientDir
	}
	if f.Changed("log-dir") {
		s.LogDir = flagLogDir
	}
	if f.Changed("log-level") {
		s.LogLevel = flagLogLevel
	}
	if f.Changed("metrics-file") {
		s.MetricsFile = flagMetricsFile
	}
	if f.Changed("skip-validate") {
		s.SkipValidation = flagSkipValidate
	}
	if err := s.Validate(); err != nil {
		return s, exporterr.ConfigMissing("settings", err)
	}
	return s, nil
}

func pipelineOptions(s config.Settings, clientDir string) dbexport.Options {
	return dbexport.Options{
		ChunkSize:      s.ChunkSize,
		SingleFileMax:  s.SingleFileMax,
		FetchSize:      s.FetchSize,
		Output:         s.Output,
		Dir:            s.OutDir,
		ClientDir:      clientDir,
		SkipValidation: s.SkipValidation,
	}
}
