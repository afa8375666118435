package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"sqlexport/dbexport"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the query and write the result to spreadsheet files",
	Long: `Runs the query and writes its result. Results up to --single-file-max rows go
to <output>.<format>; larger results are split into <output>_001.<format>,
<output>_002.<format>, ... of --chunk-size rows each.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, _ []string) error {
	return withRun(cmd, func(ctx context.Context, r *run) error {
		p, err := r.newPipeline()
		if err != nil {
			return err
		}
		if !flagQuiet {
			p.SetProgress(dbexport.NewBarProgress(cmd.ErrOrStderr(), 1000))
		}
		r.log.Sugar().Infof("Executing query: %s", r.query)
		_, err = p.Run(ctx, r.query)
		return err
	})
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
