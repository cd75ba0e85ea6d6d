package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newBatchesCmd(global *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "batches [id]",
		Short: "List recorded batches, or show one with its games",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), global.timeout)
			defer cancel()

			container, _, err := openContainer(ctx, cmd, global)
			if err != nil {
				return err
			}
			defer container.Close()

			if len(args) == 1 {
				recorded, err := container.BatchRepo.GetBatch(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), recorded)
			}

			records, err := container.BatchRepo.ListBatches(ctx, limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Batches to list")
	return cmd
}
