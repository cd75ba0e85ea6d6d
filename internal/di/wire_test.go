package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/megasena/internal/config"
	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/generation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetCSV = `contest,date,n1,n2,n3,n4,n5,n6
1,1996-03-11,4,5,30,33,41,52
2,1996-03-18,9,37,39,41,43,49
3,1996-03-25,10,11,29,30,36,47
`

func testConfig(t *testing.T, withDataset bool) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &config.Config{
		DataDir:             tmpDir,
		LogLevel:            "info",
		Port:                8080,
		ReloadSchedule:      "0 30 21 * * TUE,THU,SAT",
		MaintenanceSchedule: "0 0 3 * * *",
		Engine:              config.DefaultEngineConfig(),
	}

	if withDataset {
		path := filepath.Join(tmpDir, "draws.csv")
		require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0644))
		cfg.DatasetPath = path
	}
	return cfg
}

func TestWire(t *testing.T) {
	cfg := testConfig(t, true)
	ctx := context.Background()

	container, jobs, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)
	t.Cleanup(container.Close)

	// Verify container is fully populated
	assert.NotNil(t, container.HistoryDB)
	assert.NotNil(t, container.AuditDB)
	assert.NotNil(t, container.DrawRepo)
	assert.NotNil(t, container.BatchRepo)
	assert.NotNil(t, container.Analyzer)
	assert.NotNil(t, container.Orchestrator)
	assert.NotNil(t, container.Scheduler)
	assert.Equal(t, 3, container.Scheduler.Entries())

	// Verify jobs are registered
	assert.NotNil(t, jobs.ReloadDataset)
	assert.NotNil(t, jobs.CheckDatabases)
	assert.NotNil(t, jobs.CheckWALCheckpoints)

	store, err := container.HistoryService.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	result, err := container.Orchestrator.GenerateBatch(ctx, 2, batch.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Games, 2)

	recorded, err := container.BatchRepo.GetBatch(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Games, recorded.Games)

	require.NoError(t, jobs.ReloadDataset.Run())
	require.NoError(t, jobs.CheckDatabases.Run())
	require.NoError(t, jobs.CheckWALCheckpoints.Run())
}

func TestWire_WithoutDataset(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.ReloadSchedule = ""

	container, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	// No sources and an empty database still give a usable, empty history
	store, err := container.HistoryService.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 2, container.Scheduler.Entries())

	result, err := container.Orchestrator.GenerateBatch(context.Background(), 1, batch.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Games, 1)
	assert.Equal(t, 0, result.Summary.DrawsChecked)
}

func TestWire_MissingDatasetLeavesStoreUnavailable(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.DatasetPath = filepath.Join(cfg.DataDir, "missing.csv")

	container, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	_, err = container.HistoryService.Current()
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = container.Orchestrator.GenerateBatch(context.Background(), 1, batch.Options{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.MaintenanceSchedule = "every night"

	_, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestBatchConfig(t *testing.T) {
	seed := uint64(42)
	engine := config.DefaultEngineConfig()
	engine.HotWindow = 5
	engine.Seed = &seed
	engine.Exclude = []int{13}

	cfg := BatchConfig(engine)
	assert.Equal(t, 10, cfg.MaxQuantity)
	assert.Equal(t, 5, cfg.Frequency.HotWindow)
	assert.Equal(t, 10, cfg.Frequency.ColdWindow)
	assert.Equal(t, 500, cfg.Generation.AttemptBudget)
	assert.Equal(t, 2, cfg.Generation.MaxEmptyQuadrants)
	assert.Equal(t, generation.SamplingSpread, cfg.Generation.Sampling)
	assert.Equal(t, []int{13}, cfg.Generation.Exclude)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
}
