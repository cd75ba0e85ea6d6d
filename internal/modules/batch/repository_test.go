package batch

import (
	"context"
	"testing"

	"github.com/aristath/megasena/internal/domain"
	testingpkg "github.com/aristath/megasena/internal/testing"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch(id string, seed uint64) *domain.GenerationBatch {
	return &domain.GenerationBatch{
		ID:              id,
		Status:          domain.BatchStatusPartialFailure,
		GeneralAnalysis: "Generated 1 of 2 combinations",
		Games: []domain.ScoredCombination{
			{
				Numbers:          domain.MustCombination(4, 11, 23, 35, 47, 59),
				Reasoning:        "balanced across 4 quadrants; 2 even / 4 odd; no historical repeat",
				HistoricalCheck:  true,
				QuadrantAnalysis: domain.QuadrantDistribution{2, 0, 2, 2},
				ProbabilityScore: 88,
			},
		},
		Summary: domain.BatchSummary{
			AverageScore:   88,
			QuadrantTotals: domain.QuadrantDistribution{2, 0, 2, 2},
			HotNumbers:     1,
			ColdNumbers:    2,
			DrawsChecked:   12,
		},
		Seed:       seed,
		Requested:  2,
		UnmetSlots: 1,
	}
}

func TestRepository_RecordAndGet(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	// Seeds above MaxInt64 must survive storage
	batch := sampleBatch("b-1", ^uint64(0)-5)
	require.NoError(t, repo.Record(ctx, batch, 3))

	got, err := repo.GetBatch(ctx, "b-1")
	require.NoError(t, err)
	if diff := cmp.Diff(batch, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("batch changed in storage (-want +got):\n%s", diff)
	}

	records, err := repo.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b-1", records[0].ID)
	assert.Equal(t, domain.BatchStatusPartialFailure, records[0].Status)
	assert.Equal(t, 2, records[0].Requested)
	assert.Equal(t, 1, records[0].UnmetSlots)
	assert.Equal(t, batch.Seed, records[0].Seed)
	assert.Equal(t, uint64(3), records[0].StoreVersion)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestRepository_ListNewestFirst(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(ctx, sampleBatch(id, 1), 1))
	}

	records, err := repo.ListBatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].ID)
	assert.Equal(t, "second", records[1].ID)
}

func TestRepository_GetMissing(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())

	_, err := repo.GetBatch(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_RecordRejectsBadInput(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	assert.Error(t, repo.Record(ctx, nil, 1))
	assert.Error(t, repo.Record(ctx, sampleBatch("", 1), 1))

	require.NoError(t, repo.Record(ctx, sampleBatch("dup", 1), 1))
	assert.Error(t, repo.Record(ctx, sampleBatch("dup", 1), 1), "ids are unique")
}

func TestOrchestrator_WithRepository(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())
	store := newStore(t, testingpkg.NewDrawFixtures())
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, repo)
	ctx := context.Background()

	batch, err := orch.GenerateBatch(ctx, 2, Options{Seed: seedOf(77)})
	require.NoError(t, err)

	stored, err := repo.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(batch, stored, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("recorded batch differs (-want +got):\n%s", diff)
	}
}
