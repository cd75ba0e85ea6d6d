package main

import (
	"context"
	"strings"

	"github.com/aristath/megasena/internal/domain"
	"github.com/spf13/cobra"
)

func newCheckCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <n1> <n2> <n3> <n4> <n5> <n6>",
		Short: "Check whether a combination was ever drawn",
		Args:  cobra.RangeArgs(1, domain.PickSize),
		RunE: func(cmd *cobra.Command, args []string) error {
			combination, err := domain.ParseCombination(strings.Join(args, ","))
			if err != nil {
				return err
			}

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

			matches := store.FindByCombination(combination)
			contests := make([]int, 0, len(matches))
			for _, d := range matches {
				contests = append(contests, d.Contest)
			}

			distribution, err := container.Classifier.DistributionOf(combination)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"numbers":          combination,
				"drawn":            len(matches) > 0,
				"contests":         contests,
				"quadrantAnalysis": distribution,
				"drawsChecked":     store.Len(),
			})
		},
	}
}
