package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/generation"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	quantity          int
	seed              uint64
	workers           int
	budget            int
	hotWindow         int
	coldWindow        int
	maxEmptyQuadrants int
	sampling          string
	exclude           []int
	deadline          time.Duration
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of scored combinations",
		Long: `Generate a batch of scored combinations.

Every combination is checked against the full draw history, is unique in the
batch, spreads over at least two quadrants and keeps 2 to 4 even numbers.
Slots that cannot be filled are reported instead of silently dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, global, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.quantity, "quantity", "n", 0, "Combinations to generate (default: ENGINE_DEFAULT_QUANTITY)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed, reproduces a previous batch")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel workers per slot")
	cmd.Flags().IntVar(&opts.budget, "budget", 0, "Attempt budget per slot")
	cmd.Flags().IntVar(&opts.hotWindow, "hot-window", 0, "Draws a number stays hot for")
	cmd.Flags().IntVar(&opts.coldWindow, "cold-window", 0, "Draws after which a number turns cold")
	cmd.Flags().IntVar(&opts.maxEmptyQuadrants, "max-empty-quadrants", -1, "Quadrants allowed to stay empty (0-3)")
	cmd.Flags().StringVar(&opts.sampling, "sampling", "", "Candidate sampler: uniform or spread")
	cmd.Flags().IntSliceVar(&opts.exclude, "exclude", nil, "Numbers to leave out, e.g. --exclude 13,22")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 0, "Generation time limit (0: engine default)")

	return cmd
}

func runGenerate(cmd *cobra.Command, global *globalOptions, opts *generateOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), global.timeout)
	defer cancel()

	container, cfg, err := openContainer(ctx, cmd, global)
	if err != nil {
		return err
	}
	defer container.Close()

	quantity := cfg.Engine.DefaultQuantity
	if cmd.Flags().Changed("quantity") {
		quantity = opts.quantity
	}

	batchOpts := batch.Options{
		HotWindow:     opts.hotWindow,
		ColdWindow:    opts.coldWindow,
		AttemptBudget: opts.budget,
		Workers:       opts.workers,
		Timeout:       opts.deadline,
		Sampling:      generation.Sampling(opts.sampling),
		Exclude:       opts.exclude,
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.seed
		batchOpts.Seed = &seed
	}
	if opts.maxEmptyQuadrants >= 0 {
		maxEmpty := opts.maxEmptyQuadrants
		batchOpts.MaxEmptyQuadrants = &maxEmpty
	}

	result, err := container.Orchestrator.GenerateBatch(ctx, quantity, batchOpts)
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "partial batch: %v\n", err)
	}
	return nil
}
