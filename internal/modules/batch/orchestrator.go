// Package batch turns generation requests into scored, pairwise distinct
// batches of combinations and keeps an audit trail of every batch produced.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/generation"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/aristath/megasena/internal/modules/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Snapshotter provides the current immutable draw history
type Snapshotter interface {
	Snapshot() (domain.DrawSource, error)
}

// Recorder persists generated batches
type Recorder interface {
	Record(ctx context.Context, batch *domain.GenerationBatch, storeVersion uint64) error
}

// Orchestrator runs the batch state machine: validate the request, snapshot
// the history, then fill each slot by proposing, validating and scoring.
type Orchestrator struct {
	cfg        Config
	history    Snapshotter
	classifier *quadrants.Classifier
	analyzer   *frequency.Analyzer
	scorer     *scoring.Engine
	recorder   Recorder
	log        zerolog.Logger
}

// NewOrchestrator creates a new batch orchestrator. recorder may be nil.
func NewOrchestrator(
	cfg Config,
	history Snapshotter,
	classifier *quadrants.Classifier,
	analyzer *frequency.Analyzer,
	scorer *scoring.Engine,
	recorder Recorder,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		history:    history,
		classifier: classifier,
		analyzer:   analyzer,
		scorer:     scorer,
		recorder:   recorder,
		log:        log.With().Str("component", "batch_orchestrator").Logger(),
	}
}

// Config returns the orchestration defaults.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// GenerateBatch produces quantity scored combinations.
//
// Invalid quantities, invalid options and a missing history are fatal and
// return no batch. Slots that run out of attempts, even after relaxing
// parity, are reported through UnmetSlots and a partial_failure status;
// batch.Err() then wraps ErrGenerationExhausted.
func (o *Orchestrator) GenerateBatch(ctx context.Context, quantity int, opts Options) (*domain.GenerationBatch, error) {
	if limit := o.cfg.maxQuantity(opts); quantity < 1 || quantity > limit {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", domain.ErrInvalidQuantity, quantity, limit)
	}

	s, err := o.cfg.resolve(opts)
	if err != nil {
		return nil, err
	}

	store, err := o.history.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot draw history: %w", err)
	}

	gen, err := generation.NewGenerator(s.generation, o.classifier, o.log)
	if err != nil {
		return nil, err
	}

	table := o.tableFor(store, s.frequency)

	seed := rand.Uint64()
	if s.seed != nil {
		seed = *s.seed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	batch := &domain.GenerationBatch{
		ID:        uuid.New().String(),
		Requested: quantity,
		Seed:      seed,
		Games:     make([]domain.ScoredCombination, 0, quantity),
	}

	log := o.log.With().Str("batch_id", batch.ID).Uint64("seed", seed).Logger()
	tr := newTracker(log)
	taken := generation.Taken{}
	start := time.Now()

	for slot := 0; slot < quantity; slot++ {
		tr.startSlot(slot)

		proposal, relaxed, err := o.fillSlot(ctx, gen, store, taken, seed, slot, s.workers, tr)
		if err != nil {
			batch.UnmetSlots++
			log.Warn().
				Err(err).
				Int("slot", slot).
				Int("attempts", proposal.Attempts).
				Msg("Slot left unmet")
			continue
		}

		tr.enter(StateValidating)
		neverDrawn := !store.Contains(proposal.Combination)

		tr.enter(StateScoring)
		result, err := o.scorer.Score(scoring.Input{
			Numbers:         proposal.Combination,
			Distribution:    proposal.Distribution,
			Profiles:        table,
			HistoricalCheck: neverDrawn,
			ParityRelaxed:   relaxed,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to score %s: %w", proposal.Combination, err)
		}

		taken.Add(proposal.Combination)
		if relaxed {
			batch.RelaxedSlots++
		}
		batch.Games = append(batch.Games, domain.ScoredCombination{
			Numbers:          proposal.Combination,
			Reasoning:        result.Reasoning,
			HistoricalCheck:  neverDrawn,
			QuadrantAnalysis: proposal.Distribution,
			ProbabilityScore: result.Score,
		})
		tr.enter(StateAccepted)
	}

	if batch.UnmetSlots > 0 {
		batch.Status = domain.BatchStatusPartialFailure
		tr.enter(StatePartialFailure)
	} else {
		batch.Status = domain.BatchStatusComplete
		tr.enter(StateComplete)
	}

	batch.Summary = summarize(batch.Games, table, store.Len())
	batch.GeneralAnalysis = generalAnalysis(batch.Summary, quantity, len(batch.Games), batch.RelaxedSlots)

	o.record(ctx, batch, store.Version())

	log.Info().
		Str("status", string(batch.Status)).
		Int("requested", quantity).
		Int("unmet", batch.UnmetSlots).
		Int("relaxed", batch.RelaxedSlots).
		Dur("took", time.Since(start)).
		Msg("Batch generated")

	return batch, nil
}

// fillSlot tries the slot with every constraint, then once more with parity
// relaxed. The returned bool reports whether parity was relaxed.
func (o *Orchestrator) fillSlot(
	ctx context.Context,
	gen *generation.Generator,
	store domain.DrawSource,
	taken generation.Taken,
	seed uint64,
	slot, workers int,
	tr *tracker,
) (generation.Proposal, bool, error) {
	if err := expired(ctx); err != nil {
		return generation.Proposal{}, false, fmt.Errorf("%w: %w", domain.ErrGenerationExhausted, err)
	}

	proposal, err := o.propose(ctx, gen, store, taken, seed, slot, false, workers)
	if err == nil {
		return proposal, false, nil
	}
	if !errors.Is(err, domain.ErrGenerationExhausted) {
		return proposal, false, err
	}

	tr.log.Debug().
		Int("slot", slot).
		Str("rejections", proposal.Rejections.String()).
		Msg("Strict attempts exhausted, relaxing parity")
	tr.enter(StateRetrying)
	tr.enter(StateSampling)

	proposal, err = o.propose(ctx, gen, store, taken, seed, slot, true, workers)
	return proposal, true, err
}

// propose runs one phase of a slot. With several workers the attempt budget
// is split between them; each worker draws from its own RNG stream and the
// first success in worker order wins, so the outcome only depends on the
// seed and the worker count. A success stops every later worker, whose
// result could no longer be picked.
func (o *Orchestrator) propose(
	ctx context.Context,
	gen *generation.Generator,
	store domain.DrawSource,
	taken generation.Taken,
	seed uint64,
	slot int,
	relax bool,
	workers int,
) (generation.Proposal, error) {
	budget := gen.Config().AttemptBudget
	workers = max(1, min(workers, budget))

	if workers == 1 {
		return gen.Generate(ctx, newRand(seed, slot, relax, 0), store, generation.Request{
			Taken:       taken,
			RelaxParity: relax,
		})
	}

	type outcome struct {
		proposal generation.Proposal
		err      error
	}
	outcomes := make([]outcome, workers)
	wc := newWorkerContexts(ctx, workers)
	defer wc.release()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		share := budget / workers
		if w < budget%workers {
			share++
		}
		g.Go(func() error {
			p, err := gen.Generate(wc.ctxs[w], newRand(seed, slot, relax, w), store, generation.Request{
				Taken:       taken,
				RelaxParity: relax,
				Budget:      share,
			})
			outcomes[w] = outcome{proposal: p, err: err}
			if err == nil {
				wc.win(w)
			}
			return nil
		})
	}
	_ = g.Wait()

	var spent generation.Proposal
	for _, out := range outcomes {
		if out.err == nil {
			return out.proposal, nil
		}
		spent.Attempts += out.proposal.Attempts
		spent.Rejections.Add(out.proposal.Rejections)
	}

	err := fmt.Errorf("%w: %d workers spent %d attempts (%s)",
		domain.ErrGenerationExhausted, workers, spent.Attempts, spent.Rejections)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", err, ctxErr)
	}
	return spent, err
}

// workerContexts holds one cancellable context per worker of a phase.
type workerContexts struct {
	ctxs    []context.Context
	cancels []context.CancelFunc
}

func newWorkerContexts(parent context.Context, n int) *workerContexts {
	wc := &workerContexts{
		ctxs:    make([]context.Context, n),
		cancels: make([]context.CancelFunc, n),
	}
	for w := range n {
		wc.ctxs[w], wc.cancels[w] = context.WithCancel(parent)
	}
	return wc
}

// win cancels every worker after w. The lowest successful worker is never
// cancelled, so the pick stays the same.
func (wc *workerContexts) win(w int) {
	for _, cancel := range wc.cancels[w+1:] {
		cancel()
	}
}

func (wc *workerContexts) release() {
	for _, cancel := range wc.cancels {
		cancel()
	}
}

func (o *Orchestrator) tableFor(store domain.DrawSource, windows frequency.Config) *frequency.Table {
	if windows == o.analyzer.Config() {
		return o.analyzer.Analyze(store)
	}
	return frequency.NewAnalyzer(windows, o.classifier, o.log).Analyze(store)
}

// record writes the audit row. Failures are logged and never fail the request.
func (o *Orchestrator) record(ctx context.Context, batch *domain.GenerationBatch, storeVersion uint64) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(context.WithoutCancel(ctx), batch, storeVersion); err != nil {
		o.log.Error().Err(err).Str("batch_id", batch.ID).Msg("Failed to record batch")
	}
}

// expired is ctx.Err that also reports a deadline which has passed before
// its timer fired.
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

// newRand derives an independent PCG stream per (seed, slot, phase, worker).
func newRand(seed uint64, slot int, relaxed bool, worker int) *rand.Rand {
	stream := uint64(slot)<<16 | uint64(worker)
	if relaxed {
		stream |= 1 << 15
	}
	return rand.New(rand.NewPCG(seed, splitmix64(stream)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
