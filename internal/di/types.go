// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/megasena/internal/database"
	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/aristath/megasena/internal/modules/scoring"
	"github.com/aristath/megasena/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// Databases:
//   - history.db: historical draws (standard profile)
//   - audit.db: append-only record of generated batches (ledger profile)
type Container struct {
	// Databases
	HistoryDB *database.DB
	AuditDB   *database.DB

	// Repositories
	DrawRepo  *history.Repository
	BatchRepo *batch.Repository

	// Services
	HistoryService *history.Service
	Classifier     *quadrants.Classifier
	Analyzer       *frequency.Analyzer
	Scorer         *scoring.Engine
	Orchestrator   *batch.Orchestrator

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases by name
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"history": c.HistoryDB,
		"audit":   c.AuditDB,
	}
}

// Close closes every open database
func (c *Container) Close() {
	if c.HistoryDB != nil {
		_ = c.HistoryDB.Close()
	}
	if c.AuditDB != nil {
		_ = c.AuditDB.Close()
	}
}

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	ReloadDataset       scheduler.Job
	CheckDatabases      scheduler.Job
	CheckWALCheckpoints scheduler.Job
}
