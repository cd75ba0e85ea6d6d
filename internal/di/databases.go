package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/megasena/internal/config"
	"github.com/aristath/megasena/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. history.db - Historical draws, rebuilt from the dataset sources
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	container.HistoryDB = historyDB

	// 2. audit.db - Every generated batch, never rewritten
	auditDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "audit.db"),
		Profile: database.ProfileLedger, // Maximum safety for the audit trail
		Name:    "audit",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize audit database: %w", err)
	}
	container.AuditDB = auditDB

	for name, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
		}
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}
