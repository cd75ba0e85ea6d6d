// Package generation proposes 6-number combinations that satisfy the hard
// constraints: valid range, never drawn, unique in the batch, spread across
// quadrants and parity balanced.
package generation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/rs/zerolog"
)

// Config contains parameters for combination generation.
type Config struct {
	AttemptBudget     int      // Candidates tried per slot before giving up (default: 500)
	MaxEmptyQuadrants int      // Quadrants allowed to hold no numbers (default: 2)
	Sampling          Sampling // Candidate sampler (default: spread)
	Exclude           []int    // Numbers removed from the pool
}

// DefaultConfig returns the default generation parameters.
func DefaultConfig() Config {
	return Config{
		AttemptBudget:     500,
		MaxEmptyQuadrants: 2,
		Sampling:          SamplingSpread,
	}
}

// Generator produces single combinations by generate-and-test. It holds no
// per-request state and is safe for concurrent use; randomness comes from the
// caller's *rand.Rand.
type Generator struct {
	cfg        Config
	classifier *quadrants.Classifier
	pool       []int
	poolMask   uint64
	members    [domain.QuadrantCount][]int
	chain      []check
	log        zerolog.Logger
}

// Request describes one slot.
type Request struct {
	// Taken holds the combinations already accepted in the batch (read only)
	Taken Taken
	// RelaxParity drops the parity constraint
	RelaxParity bool
	// Budget overrides the configured attempt budget when positive
	Budget int
}

// Proposal is a candidate that passed every active constraint.
type Proposal struct {
	Combination  domain.Combination
	Distribution domain.QuadrantDistribution
	Attempts     int
	Rejections   Rejections
}

// NewGenerator validates cfg and precomputes the number pool.
func NewGenerator(cfg Config, classifier *quadrants.Classifier, log zerolog.Logger) (*Generator, error) {
	if cfg.AttemptBudget < 1 {
		return nil, fmt.Errorf("%w: attempt budget must be at least 1, got %d", domain.ErrInvalidOptions, cfg.AttemptBudget)
	}
	if cfg.MaxEmptyQuadrants < 0 || cfg.MaxEmptyQuadrants >= domain.QuadrantCount {
		return nil, fmt.Errorf("%w: max empty quadrants must be in [0,%d], got %d", domain.ErrInvalidOptions, domain.QuadrantCount-1, cfg.MaxEmptyQuadrants)
	}
	if cfg.Sampling == "" {
		cfg.Sampling = SamplingSpread
	}
	if cfg.Sampling != SamplingUniform && cfg.Sampling != SamplingSpread {
		return nil, fmt.Errorf("%w: unknown sampling %q", domain.ErrInvalidOptions, cfg.Sampling)
	}

	g := &Generator{
		cfg:        cfg,
		classifier: classifier,
		log:        log.With().Str("component", "combination_generator").Logger(),
	}

	var excluded uint64
	for _, n := range cfg.Exclude {
		if !domain.InRange(n) {
			return nil, fmt.Errorf("%w: excluded number %d", domain.ErrInvalidOptions, n)
		}
		excluded |= 1 << uint(n)
	}

	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if excluded&(1<<uint(n)) != 0 {
			continue
		}
		g.pool = append(g.pool, n)
		g.poolMask |= 1 << uint(n)
		q, err := classifier.Classify(n)
		if err != nil {
			return nil, err
		}
		g.members[q] = append(g.members[q], n)
	}

	if len(g.pool) < domain.PickSize {
		return nil, fmt.Errorf("%w: only %d numbers left after exclusions", domain.ErrInvalidOptions, len(g.pool))
	}

	represented := 0
	for _, m := range g.members {
		if len(m) > 0 {
			represented++
		}
	}
	if domain.QuadrantCount-represented > cfg.MaxEmptyQuadrants {
		return nil, fmt.Errorf("%w: exclusions leave %d quadrants, at least %d required",
			domain.ErrInvalidOptions, represented, domain.QuadrantCount-cfg.MaxEmptyQuadrants)
	}

	g.chain = g.buildChain()
	return g, nil
}

// Config returns the generation parameters in use.
func (g *Generator) Config() Config {
	return g.cfg
}

// PoolSize returns how many numbers candidates are drawn from.
func (g *Generator) PoolSize() int {
	return len(g.pool)
}

// Generate samples candidates until one passes the constraint chain or the
// attempt budget runs out. Exhaustion and context cancellation both return an
// error wrapping ErrGenerationExhausted; the Proposal still carries the
// attempt and rejection counts.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, store domain.DrawSource, req Request) (Proposal, error) {
	if store == nil {
		return Proposal{}, domain.ErrStoreUnavailable
	}

	budget := g.cfg.AttemptBudget
	if req.Budget > 0 {
		budget = req.Budget
	}

	s := g.newSampler(rng)
	var p Proposal

	for p.Attempts < budget {
		if err := ctx.Err(); err != nil {
			return p, fmt.Errorf("%w: stopped after %d attempts: %w", domain.ErrGenerationExhausted, p.Attempts, err)
		}
		p.Attempts++

		violated, combination, distribution := g.Violation(store, req.Taken, s.next(), req.RelaxParity)
		if violated != ConstraintNone {
			p.Rejections[violated]++
			continue
		}

		p.Combination = combination
		p.Distribution = distribution
		return p, nil
	}

	g.log.Debug().
		Int("attempts", p.Attempts).
		Bool("relax_parity", req.RelaxParity).
		Str("rejections", p.Rejections.String()).
		Msg("Attempt budget exhausted")

	return p, fmt.Errorf("%w: %d attempts (%s)", domain.ErrGenerationExhausted, p.Attempts, p.Rejections)
}
