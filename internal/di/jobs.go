package di

import (
	"fmt"

	"github.com/aristath/megasena/internal/config"
	"github.com/aristath/megasena/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and registers them with the scheduler.
// Empty schedules leave a job available for manual runs only.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)

	reload := scheduler.NewReloadDatasetJob(container.HistoryService, 0)
	reload.SetLogger(log.With().Str("job", "reload_dataset").Logger())

	checkDatabases := scheduler.NewCheckDatabasesJob(container.Databases())
	checkDatabases.SetLogger(log.With().Str("job", "check_databases").Logger())

	checkWAL := scheduler.NewCheckWALCheckpointsJob(container.Databases())
	checkWAL.SetLogger(log.With().Str("job", "check_wal_checkpoints").Logger())

	instances := &JobInstances{
		ReloadDataset:       reload,
		CheckDatabases:      checkDatabases,
		CheckWALCheckpoints: checkWAL,
	}

	if cfg.ReloadSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.ReloadSchedule, reload); err != nil {
			return nil, fmt.Errorf("failed to schedule dataset reload: %w", err)
		}
	}

	if cfg.MaintenanceSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, checkDatabases); err != nil {
			return nil, fmt.Errorf("failed to schedule database check: %w", err)
		}
		if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, checkWAL); err != nil {
			return nil, fmt.Errorf("failed to schedule WAL check: %w", err)
		}
	}

	return instances, nil
}
