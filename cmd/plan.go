package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Count the query rows and list the files an export would write",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRun(cmd, func(ctx context.Context, r *run) error {
			p, err := r.newPipeline()
			if err != nil {
				return err
			}
			m, err := p.DryRun(ctx, r.query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", m.Mode)
			for _, f := range m.Files {
				fmt.Fprintf(out, "%s\t%d rows\n", f.Name, f.Rows)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
