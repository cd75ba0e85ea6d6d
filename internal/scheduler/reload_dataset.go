package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Reloader re-reads the draw dataset from its sources
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadDatasetJob refreshes the historical draws after new contests
type ReloadDatasetJob struct {
	log      zerolog.Logger
	reloader Reloader
	timeout  time.Duration
}

// NewReloadDatasetJob creates a new ReloadDatasetJob
func NewReloadDatasetJob(reloader Reloader, timeout time.Duration) *ReloadDatasetJob {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ReloadDatasetJob{
		log:      zerolog.Nop(),
		reloader: reloader,
		timeout:  timeout,
	}
}

// SetLogger sets the logger for the job
func (j *ReloadDatasetJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *ReloadDatasetJob) Name() string {
	return "reload_dataset"
}

// Run executes the reload
func (j *ReloadDatasetJob) Run() error {
	if j.reloader == nil {
		return fmt.Errorf("reload dataset: no reloader configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.reloader.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload dataset: %w", err)
	}

	j.log.Info().Dur("took", time.Since(start)).Msg("Dataset reloaded")
	return nil
}
