package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/generation"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/aristath/megasena/internal/modules/scoring"
	testingpkg "github.com/aristath/megasena/internal/testing"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type staticHistory struct {
	store domain.DrawSource
	err   error
	calls int
}

func (s *staticHistory) Snapshot() (domain.DrawSource, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

type memoryRecorder struct {
	mu       sync.Mutex
	batches  []*domain.GenerationBatch
	versions []uint64
	err      error
}

func (m *memoryRecorder) Record(ctx context.Context, batch *domain.GenerationBatch, storeVersion uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, batch)
	m.versions = append(m.versions, storeVersion)
	return nil
}

func seedOf(v uint64) *uint64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// excludeAbove removes every number greater than n from the pool
func excludeAbove(n int) []int {
	var out []int
	for i := n + 1; i <= domain.MaxNumber; i++ {
		out = append(out, i)
	}
	return out
}

func drawsOf(combinations []domain.Combination) []domain.Draw {
	return testingpkg.NewSequentialDraws(len(combinations), func(i int) domain.Combination {
		return combinations[i]
	})
}

func newStore(t *testing.T, draws []domain.Draw) *history.Store {
	t.Helper()
	store, err := history.NewStore(draws)
	require.NoError(t, err)
	return store
}

func newTestOrchestrator(cfg Config, hist Snapshotter, rec Recorder) *Orchestrator {
	log := zerolog.Nop()
	classifier := quadrants.New()
	return NewOrchestrator(
		cfg,
		hist,
		classifier,
		frequency.NewAnalyzer(cfg.Frequency, classifier, log),
		scoring.NewEngine(scoring.DefaultConfig()),
		rec,
		log,
	)
}

func fixtureOrchestrator(t *testing.T) (*Orchestrator, *history.Store) {
	t.Helper()
	store := newStore(t, testingpkg.NewDrawFixtures())
	return newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, nil), store
}

func assertValidBatch(t *testing.T, store domain.DrawSource, batch *domain.GenerationBatch) {
	t.Helper()
	seen := make(map[domain.Combination]bool, len(batch.Games))
	for _, g := range batch.Games {
		require.NoError(t, g.Numbers.Validate())
		assert.False(t, seen[g.Numbers], "duplicate combination %s", g.Numbers)
		seen[g.Numbers] = true

		assert.False(t, store.Contains(g.Numbers), "%s was drawn before", g.Numbers)
		assert.True(t, g.HistoricalCheck)
		assert.Equal(t, domain.PickSize, g.QuadrantAnalysis.Sum())
		assert.LessOrEqual(t, g.QuadrantAnalysis.Empty(), 2)
		assert.GreaterOrEqual(t, g.ProbabilityScore, 0)
		assert.LessOrEqual(t, g.ProbabilityScore, 100)
		assert.NotEmpty(t, g.Reasoning)
	}
	assert.Equal(t, batch.Requested, len(batch.Games)+batch.UnmetSlots)
}

func TestGenerateBatch_ReturnsRequestedQuantity(t *testing.T) {
	orch, store := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{Seed: seedOf(7)})
	require.NoError(t, err)
	require.NotNil(t, batch)

	require.Len(t, batch.Games, 3)
	assertValidBatch(t, store, batch)
	assert.Equal(t, domain.BatchStatusComplete, batch.Status)
	assert.Equal(t, 0, batch.UnmetSlots)
	assert.NoError(t, batch.Err())
	assert.Equal(t, uint64(7), batch.Seed)
	assert.NotEmpty(t, batch.ID)

	assert.Equal(t, store.Len(), batch.Summary.DrawsChecked)
	assert.True(t, strings.HasPrefix(batch.GeneralAnalysis, "Generated 3 of 3 combinations, each checked against 12 past draws"))
}

func TestGenerateBatch_FullBatchAtCap(t *testing.T) {
	orch, store := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 10, Options{Seed: seedOf(99)})
	require.NoError(t, err)
	require.Len(t, batch.Games, 10)
	assertValidBatch(t, store, batch)

	total := 0
	for _, v := range batch.Summary.QuadrantTotals {
		total += v
	}
	assert.Equal(t, 10*domain.PickSize, total)
}

func TestGenerateBatch_NeverReturnsDrawnCombination(t *testing.T) {
	drawn := domain.MustCombination(1, 2, 3, 4, 5, 6)
	store := newStore(t, drawsOf([]domain.Combination{drawn}))
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, nil)

	// The pool {1..7} leaves exactly 6 legal combinations besides the drawn one
	batch, err := orch.GenerateBatch(context.Background(), 6, Options{
		Seed:    seedOf(3),
		Exclude: excludeAbove(7),
	})
	require.NoError(t, err)
	require.Len(t, batch.Games, 6)
	assertValidBatch(t, store, batch)
	for _, g := range batch.Games {
		assert.NotEqual(t, drawn, g.Numbers)
	}
}

func TestGenerateBatch_InvalidQuantity(t *testing.T) {
	store := newStore(t, testingpkg.NewDrawFixtures())

	tests := []struct {
		name     string
		quantity int
		opts     Options
	}{
		{"zero", 0, Options{}},
		{"negative", -1, Options{}},
		{"above configured cap", 11, Options{MaxQuantity: 10}},
		{"above lowered cap", 6, Options{MaxQuantity: 5}},
		{"cap cannot be raised", 11, Options{MaxQuantity: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := &staticHistory{store: store}
			orch := newTestOrchestrator(DefaultConfig(), hist, nil)

			batch, err := orch.GenerateBatch(context.Background(), tt.quantity, tt.opts)
			assert.Nil(t, batch)
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
			assert.Equal(t, 0, hist.calls, "history must not be touched")
		})
	}
}

func TestGenerateBatch_StoreUnavailable(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{err: domain.ErrStoreUnavailable}, nil)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{})
	assert.Nil(t, batch)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestGenerateBatch_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown sampling", Options{Sampling: "bogus"}},
		{"too many workers", Options{Workers: 65}},
		{"negative budget", Options{AttemptBudget: -1}},
		{"negative window", Options{HotWindow: -3}},
		{"excluded number out of range", Options{Exclude: []int{0}}},
		{"pool too small", Options{Exclude: excludeAbove(5)}},
		{"empty quadrant limit", Options{MaxEmptyQuadrants: intPtr(4)}},
		{"negative timeout", Options{Timeout: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch, _ := fixtureOrchestrator(t)
			batch, err := orch.GenerateBatch(context.Background(), 2, tt.opts)
			assert.Nil(t, batch)
			assert.ErrorIs(t, err, domain.ErrInvalidOptions)
		})
	}
}

func TestGenerateBatch_AdversarialStoreIsPartial(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}
	store := newStore(t, drawsOf(testingpkg.AllCombinationsOf(pool)))
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, nil)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{
		Seed:          seedOf(11),
		Exclude:       excludeAbove(8),
		AttemptBudget: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Empty(t, batch.Games)
	assert.Equal(t, 3, batch.UnmetSlots)
	assert.Equal(t, domain.BatchStatusPartialFailure, batch.Status)
	assert.ErrorIs(t, batch.Err(), domain.ErrGenerationExhausted)
	assert.Contains(t, batch.GeneralAnalysis, "3 combinations could not be produced")
}

func TestGenerateBatch_AdversarialStoreLeavesOneGap(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}
	gap := domain.MustCombination(1, 2, 3, 6, 7, 8)

	var drawn []domain.Combination
	for _, c := range testingpkg.AllCombinationsOf(pool) {
		if c != gap {
			drawn = append(drawn, c)
		}
	}
	store := newStore(t, drawsOf(drawn))
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, nil)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{
		Seed:     seedOf(5),
		Exclude:  excludeAbove(8),
		Sampling: generation.SamplingUniform,
	})
	require.NoError(t, err)

	require.Len(t, batch.Games, 1)
	assert.Equal(t, gap, batch.Games[0].Numbers)
	assert.Equal(t, domain.QuadrantDistribution{3, 3, 0, 0}, batch.Games[0].QuadrantAnalysis)
	assert.Equal(t, 2, batch.UnmetSlots)
	assert.Equal(t, domain.BatchStatusPartialFailure, batch.Status)
	assert.ErrorIs(t, batch.Err(), domain.ErrGenerationExhausted)
}

func TestGenerateBatch_RelaxesParity(t *testing.T) {
	var evens []int
	for n := 2; n <= domain.MaxNumber; n += 2 {
		evens = append(evens, n)
	}
	orch, store := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 2, Options{
		Seed:          seedOf(1),
		Exclude:       evens,
		AttemptBudget: 20,
	})
	require.NoError(t, err)

	require.Len(t, batch.Games, 2)
	assertValidBatch(t, store, batch)
	assert.Equal(t, domain.BatchStatusComplete, batch.Status)
	assert.Equal(t, 2, batch.RelaxedSlots)
	for _, g := range batch.Games {
		assert.Equal(t, 0, g.Numbers.Evens())
		assert.Contains(t, g.Reasoning, "parity relaxed")
	}
	assert.Contains(t, batch.GeneralAnalysis, "Parity balance was relaxed for 2 games")
}

func TestGenerateBatch_CancelledContext(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := orch.GenerateBatch(ctx, 3, Options{Seed: seedOf(1)})
	require.NoError(t, err)
	assert.Empty(t, batch.Games)
	assert.Equal(t, 3, batch.UnmetSlots)
	assert.ErrorIs(t, batch.Err(), domain.ErrGenerationExhausted)
}

func TestGenerateBatch_TimeoutMarksSlotsUnmet(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{
		Seed:    seedOf(1),
		Timeout: time.Nanosecond,
	})
	require.NoError(t, err)
	assert.Empty(t, batch.Games)
	assert.Equal(t, 3, batch.UnmetSlots)
	assert.Equal(t, domain.BatchStatusPartialFailure, batch.Status)
	assert.ErrorIs(t, batch.Err(), domain.ErrGenerationExhausted)
	assert.Contains(t, batch.GeneralAnalysis, "3 combinations could not be produced")
}

func TestGenerateBatch_ExpiredParentDeadline(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	batch, err := orch.GenerateBatch(ctx, 2, Options{Seed: seedOf(1), Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.UnmetSlots)
}

func TestWorkerContexts_WinStopsLaterWorkers(t *testing.T) {
	wc := newWorkerContexts(context.Background(), 4)

	wc.win(1)
	assert.NoError(t, wc.ctxs[0].Err())
	assert.NoError(t, wc.ctxs[1].Err())
	assert.ErrorIs(t, wc.ctxs[2].Err(), context.Canceled)
	assert.ErrorIs(t, wc.ctxs[3].Err(), context.Canceled)

	// A later success never reaches back to earlier workers
	wc.win(3)
	assert.NoError(t, wc.ctxs[0].Err())

	wc.release()
	for w := range 4 {
		assert.ErrorIs(t, wc.ctxs[w].Err(), context.Canceled)
	}
}

func TestGenerateBatch_ParallelWinnerMatchesLowestWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	orch, store := fixtureOrchestrator(t)
	ctx := context.Background()

	// With a generous budget worker 0 always succeeds, so the parallel pick
	// equals what worker 0's stream produces
	parallel, err := orch.GenerateBatch(ctx, 3, Options{Seed: seedOf(5), Workers: 4})
	require.NoError(t, err)
	require.Len(t, parallel.Games, 3)
	assertValidBatch(t, store, parallel)

	gen, err := generation.NewGenerator(generation.DefaultConfig(), quadrants.New(), zerolog.Nop())
	require.NoError(t, err)
	taken := generation.Taken{}
	for slot, game := range parallel.Games {
		p, err := gen.Generate(ctx, newRand(5, slot, false, 0), store, generation.Request{
			Taken:  taken,
			Budget: generation.DefaultConfig().AttemptBudget / 4,
		})
		require.NoError(t, err)
		assert.Equal(t, p.Combination, game.Numbers)
		taken.Add(p.Combination)
	}
}

func TestGenerateBatch_DeterministicForSeed(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)
	ctx := context.Background()

	first, err := orch.GenerateBatch(ctx, 5, Options{Seed: seedOf(2024)})
	require.NoError(t, err)
	second, err := orch.GenerateBatch(ctx, 5, Options{Seed: seedOf(2024)})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	if diff := cmp.Diff(first.Games, second.Games); diff != "" {
		t.Errorf("games differ for the same seed (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.GeneralAnalysis, second.GeneralAnalysis)
}

func TestGenerateBatch_ParallelWorkersDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	orch, store := fixtureOrchestrator(t)
	ctx := context.Background()
	opts := Options{Seed: seedOf(42), Workers: 4}

	first, err := orch.GenerateBatch(ctx, 10, opts)
	require.NoError(t, err)
	second, err := orch.GenerateBatch(ctx, 10, opts)
	require.NoError(t, err)

	require.Len(t, first.Games, 10)
	assertValidBatch(t, store, first)
	if diff := cmp.Diff(first.Games, second.Games); diff != "" {
		t.Errorf("parallel run not reproducible (-first +second):\n%s", diff)
	}
}

func TestGenerateBatch_ParallelWorkersExhaust(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}
	store := newStore(t, drawsOf(testingpkg.AllCombinationsOf(pool)))
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, nil)

	batch, err := orch.GenerateBatch(context.Background(), 2, Options{
		Seed:          seedOf(8),
		Exclude:       excludeAbove(8),
		AttemptBudget: 3,
		Workers:       8,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.UnmetSlots)
}

func TestGenerateBatch_WindowOverride(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 2, Options{
		Seed:       seedOf(4),
		HotWindow:  1,
		ColdWindow: 100,
	})
	require.NoError(t, err)
	require.Len(t, batch.Games, 2)

	// With a one-draw hot window only the latest draw's numbers are hot
	latest := testingpkg.NewDrawFixtures()[11].Numbers
	hot := 0
	for _, g := range batch.Games {
		for _, n := range g.Numbers {
			for _, l := range latest {
				if n == l {
					hot++
				}
			}
		}
	}
	assert.Equal(t, hot, batch.Summary.HotNumbers)
}

func TestGenerateBatch_RecordsAudit(t *testing.T) {
	store := newStore(t, testingpkg.NewDrawFixtures())
	rec := &memoryRecorder{}
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, rec)

	batch, err := orch.GenerateBatch(context.Background(), 2, Options{Seed: seedOf(1)})
	require.NoError(t, err)

	require.Len(t, rec.batches, 1)
	assert.Equal(t, batch.ID, rec.batches[0].ID)
	assert.Equal(t, store.Version(), rec.versions[0])
}

func TestGenerateBatch_AuditFailureDoesNotFail(t *testing.T) {
	store := newStore(t, testingpkg.NewDrawFixtures())
	rec := &memoryRecorder{err: errors.New("disk full")}
	orch := newTestOrchestrator(DefaultConfig(), &staticHistory{store: store}, rec)

	batch, err := orch.GenerateBatch(context.Background(), 2, Options{Seed: seedOf(1)})
	require.NoError(t, err)
	assert.Len(t, batch.Games, 2)
}

func TestGenerateBatch_JSONRoundTrip(t *testing.T) {
	orch, _ := fixtureOrchestrator(t)

	batch, err := orch.GenerateBatch(context.Background(), 3, Options{Seed: seedOf(13)})
	require.NoError(t, err)

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"generalAnalysis", "games", "id", "status", "requested", "unmetSlots", "relaxedSlots", "seed", "summary"} {
		assert.Contains(t, raw, key)
	}
	game := raw["games"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"numbers", "reasoning", "historicalCheck", "quadrantAnalysis", "probabilityScore"} {
		assert.Contains(t, game, key)
	}
	assert.Contains(t, game["quadrantAnalysis"], "q1")

	var decoded domain.GenerationBatch
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(*batch, decoded); diff != "" {
		t.Errorf("batch changed through JSON (-want +got):\n%s", diff)
	}
}
