package di

import (
	"fmt"

	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the data access layer
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.DrawRepo = history.NewRepository(container.HistoryDB.Conn(), log)
	container.BatchRepo = batch.NewRepository(container.AuditDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
