package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sqlexport/config"
	"sqlexport/exporterr"
)

// exitFunc is a package-level variable to allow test injection.
var exitFunc = os.Exit

// Flags shared by every command that talks to the database.
var (
	flagConfig        string
	flagQueryFile     string
	flagDBFile        string
	flagOutput        string
	flagFormat        string
	flagOutDir        string
	flagSheet         string
	flagChunkSize     int
	flagSingleFileMax int64
	flagFetchSize     int
	flagClientDir     string
	flagLogDir        string
	flagLogLevel      string
	flagMetricsFile   string
	flagSkipValidate  bool
	flagQuiet         bool
)

var rootCmd = &cobra.Command{
	Use:   "sqlexport",
	Short: "Export a SQL query result to spreadsheet files",
	Long: `sqlexport runs the query stored in a text file against the database described
by a credential file and writes the result to one spreadsheet, or to a series of
numbered spreadsheets when the result is too large for one file.

Running sqlexport without a command is the same as "sqlexport export".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExport,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultSettingsFile, "YAML settings file (optional unless set explicitly)")
	pf.StringVar(&flagQueryFile, "query-file", config.DefaultQueryFile, "File holding the SQL query")
	pf.StringVar(&flagDBFile, "db-file", config.DefaultDBFile, "Credential file with user, password, dsn and driver")
	pf.StringVar(&flagOutput, "output", config.DefaultOutput, "Base name of the output files")
	pf.StringVar(&flagFormat, "format", config.DefaultFormat, "Output format: xlsx, csv, tsv")
	pf.StringVar(&flagOutDir, "out-dir", "", "Directory for the output files")
	pf.StringVar(&flagSheet, "sheet", config.DefaultSheet, "Worksheet name for xlsx output")
	pf.IntVar(&flagChunkSize, "chunk-size", config.DefaultChunkSize, "Rows per file in multi-file mode")
	pf.Int64Var(&flagSingleFileMax, "single-file-max", config.DefaultSingleFileMax, "Largest row count written as a single file (0: default, negative: always split)")
	pf.IntVar(&flagFetchSize, "fetch-size", config.DefaultFetchSize, "Rows fetched from the driver per round trip")
	pf.StringVar(&flagClientDir, "client-dir", config.DefaultClientDir, "Native database client directory (env: SQLEXPORT_CLIENT_DIR)")
	pf.StringVar(&flagLogDir, "log-dir", "", "Directory for the run log file")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")
	pf.BoolVar(&flagSkipValidate, "skip-validate", false, "Do not parse the query before sending it to the database")
	pf.BoolVar(&flagQuiet, "quiet", false, "Do not draw the progress bar")
}

// reportedError marks an error that is already in the run log.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Execute runs the root command and exits with the code of its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		exitFunc(exporterr.ExitCode(err))
	}
}
