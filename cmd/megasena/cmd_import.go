package main

import (
	"context"

	"github.com/aristath/megasena/internal/modules/history"
	"github.com/spf13/cobra"
)

func newImportCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import historical draws from a CSV file",
		Long: `Import historical draws from a CSV file.

Rows are contest,date,n1,...,n6 separated by commas or semicolons. A header
row is optional and dates may be 2006-01-02 or 02/01/2006. Existing contests
are updated, so importing the same file twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), global.timeout)
			defer cancel()

			draws, err := history.ParseCSVFile(args[0])
			if err != nil {
				return err
			}

			container, _, err := openContainer(ctx, cmd, global)
			if err != nil {
				return err
			}
			defer container.Close()

			saved, err := container.HistoryService.Import(ctx, draws)
			if err != nil {
				return err
			}

			store, err := container.HistoryService.Current()
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"file":   args[0],
				"parsed": len(draws),
				"saved":  saved,
				"draws":  store.Len(),
			})
		},
	}
}
