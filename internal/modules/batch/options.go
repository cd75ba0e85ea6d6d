package batch

import (
	"fmt"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/generation"
)

const maxWorkers = 64

// Config holds the engine defaults every request starts from.
type Config struct {
	MaxQuantity     int
	DefaultQuantity int
	Workers         int
	Timeout         time.Duration
	// Seed fixes the random seed for every request that does not bring its own
	Seed       *uint64
	Frequency  frequency.Config
	Generation generation.Config
}

// DefaultConfig returns the default orchestration parameters.
func DefaultConfig() Config {
	return Config{
		MaxQuantity:     10,
		DefaultQuantity: 10,
		Workers:         1,
		Frequency:       frequency.DefaultConfig(),
		Generation:      generation.DefaultConfig(),
	}
}

// Options are per-request overrides. Zero values keep the configured default.
type Options struct {
	// MaxQuantity can only lower the configured cap
	MaxQuantity       int                 `json:"maxQuantity,omitempty"`
	HotWindow         int                 `json:"hotWindow,omitempty"`
	ColdWindow        int                 `json:"coldWindow,omitempty"`
	AttemptBudget     int                 `json:"attemptBudgetPerSlot,omitempty"`
	Seed              *uint64             `json:"randomSeed,omitempty"`
	Workers           int                 `json:"workers,omitempty"`
	Timeout           time.Duration       `json:"-"`
	MaxEmptyQuadrants *int                `json:"maxEmptyQuadrants,omitempty"`
	Sampling          generation.Sampling `json:"sampling,omitempty"`
	Exclude           []int               `json:"exclude,omitempty"`
}

// settings is the merged view of Config and Options for one request
type settings struct {
	maxQuantity int
	workers     int
	timeout     time.Duration
	seed        *uint64
	frequency   frequency.Config
	generation  generation.Config
}

func (c Config) maxQuantity(opts Options) int {
	if opts.MaxQuantity > 0 && opts.MaxQuantity < c.MaxQuantity {
		return opts.MaxQuantity
	}
	return c.MaxQuantity
}

// resolve merges opts over the configured defaults. Generator-level checks
// (budget, sampling, exclusions) are left to generation.NewGenerator.
func (c Config) resolve(opts Options) (settings, error) {
	s := settings{
		maxQuantity: c.maxQuantity(opts),
		workers:     c.Workers,
		timeout:     c.Timeout,
		seed:        c.Seed,
		frequency:   c.Frequency,
		generation:  c.Generation,
	}

	if opts.MaxQuantity < 0 {
		return s, fmt.Errorf("%w: maxQuantity must not be negative", domain.ErrInvalidOptions)
	}
	if opts.HotWindow < 0 || opts.ColdWindow < 0 {
		return s, fmt.Errorf("%w: windows must not be negative", domain.ErrInvalidOptions)
	}
	if opts.HotWindow > 0 {
		s.frequency.HotWindow = opts.HotWindow
	}
	if opts.ColdWindow > 0 {
		s.frequency.ColdWindow = opts.ColdWindow
	}

	if opts.AttemptBudget < 0 {
		return s, fmt.Errorf("%w: attempt budget must not be negative", domain.ErrInvalidOptions)
	}
	if opts.AttemptBudget > 0 {
		s.generation.AttemptBudget = opts.AttemptBudget
	}
	if opts.MaxEmptyQuadrants != nil {
		s.generation.MaxEmptyQuadrants = *opts.MaxEmptyQuadrants
	}
	if opts.Sampling != "" {
		s.generation.Sampling = opts.Sampling
	}
	if len(opts.Exclude) > 0 {
		s.generation.Exclude = append(append([]int(nil), s.generation.Exclude...), opts.Exclude...)
	}

	if opts.Workers < 0 || opts.Workers > maxWorkers {
		return s, fmt.Errorf("%w: workers must be in [1,%d], got %d", domain.ErrInvalidOptions, maxWorkers, opts.Workers)
	}
	if opts.Workers > 0 {
		s.workers = opts.Workers
	}
	if s.workers < 1 {
		s.workers = 1
	}

	if opts.Timeout < 0 {
		return s, fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidOptions)
	}
	if opts.Timeout > 0 {
		s.timeout = opts.Timeout
	}
	if opts.Seed != nil {
		s.seed = opts.Seed
	}

	return s, nil
}
