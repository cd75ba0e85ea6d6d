package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show hot and cold numbers and quadrant totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), global.timeout)
			defer cancel()

			container, _, err := openContainer(ctx, cmd, global)
			if err != nil {
				return err
			}
			defer container.Close()

			store, err := container.HistoryService.Current()
			if err != nil {
				return err
			}

			table := container.Analyzer.Analyze(store)
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"draws":          table.Draws(),
				"windows":        table.Windows(),
				"hot":            table.Hot(),
				"cold":           table.Cold(),
				"quadrantTotals": table.QuadrantTotals(),
				"uniformity":     table.Uniformity(),
				"numbers":        table.Profiles(),
			})
		},
	}
}
