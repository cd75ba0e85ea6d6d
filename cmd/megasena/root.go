package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/megasena/internal/config"
	"github.com/aristath/megasena/internal/di"
	"github.com/aristath/megasena/pkg/logger"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	dataDir  string
	logLevel string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "megasena",
		Short:         "Generate Mega-Sena combinations that never repeat a past draw",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory (default: MEGASENA_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: LOG_LEVEL or info)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newBatchesCmd(opts))

	return rootCmd
}

// openContainer loads configuration, applies the persistent flags and wires
// the databases and services. The caller must close the container.
func openContainer(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*di.Container, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.dataDir != "" {
		abs, err := filepath.Abs(opts.dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		cfg.DataDir = abs
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})

	container, _, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return container, cfg, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
