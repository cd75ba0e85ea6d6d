package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/megasena/internal/database"
	"github.com/rs/zerolog"
)

// CheckDatabasesJob verifies integrity of the SQLite databases
type CheckDatabasesJob struct {
	log       zerolog.Logger
	databases map[string]*database.DB
}

// NewCheckDatabasesJob creates a new CheckDatabasesJob; nil databases are skipped
func NewCheckDatabasesJob(databases map[string]*database.DB) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		log:       zerolog.Nop(),
		databases: databases,
	}
}

// SetLogger sets the logger for the job
func (j *CheckDatabasesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run executes the integrity check
func (j *CheckDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, name := range sortedNames(j.databases) {
		db := j.databases[name]
		if db == nil {
			j.log.Warn().Str("database", name).Msg("Database not initialized, skipping")
			continue
		}

		if err := db.HealthCheck(ctx); err != nil {
			// Corruption cannot be repaired automatically
			j.log.Error().
				Err(err).
				Str("database", name).
				Msg("Database integrity check failed")
			return fmt.Errorf("database %s is corrupted: %w", name, err)
		}

		j.log.Debug().Str("database", name).Msg("Database integrity OK")
	}

	j.log.Info().Msg("All databases integrity check passed")
	return nil
}

func sortedNames(databases map[string]*database.DB) []string {
	names := make([]string, 0, len(databases))
	for name := range databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
