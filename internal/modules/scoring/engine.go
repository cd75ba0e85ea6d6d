// Package scoring assigns reproducible 0-100 confidence scores to combinations.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/megasena/internal/domain"
)

// Config holds the scoring weights
type Config struct {
	Base                 float64 // Starting score (default: 70)
	MaxBalanceBonus      float64 // Bonus for an even quadrant split (default: 20)
	MixedCoverageBonus   float64 // At least one hot and one cold number (default: 10)
	PartialCoverageBonus float64 // Only hot or only cold numbers (default: 4)
	ParityRelaxedPenalty float64 // Parity band had to be dropped (default: 5)
	RepeatPenalty        float64 // Combination was drawn before (default: 50)
}

// DefaultConfig returns the default scoring weights
func DefaultConfig() Config {
	return Config{
		Base:                 70,
		MaxBalanceBonus:      20,
		MixedCoverageBonus:   10,
		PartialCoverageBonus: 4,
		ParityRelaxedPenalty: 5,
		RepeatPenalty:        50,
	}
}

const (
	idealPerQuadrant = float64(domain.PickSize) / domain.QuadrantCount // 1.5
	// deviation bounds of Σ(q-1.5)² over all distributions summing to 6:
	// 1 for {2,2,1,1}, 27 for {6,0,0,0}
	minDeviation = 1.0
	maxDeviation = 27.0
)

// Profiles looks up frequency profiles by number
type Profiles interface {
	Profile(n int) (domain.FrequencyProfile, error)
}

// Input is everything a score depends on
type Input struct {
	Numbers      domain.Combination
	Distribution domain.QuadrantDistribution
	Profiles     Profiles
	// HistoricalCheck is true when the combination was never drawn
	HistoricalCheck bool
	ParityRelaxed   bool
}

// Reason is one applied rule and its contribution
type Reason struct {
	Rule   string  `json:"rule"`
	Points float64 `json:"points"`
	Detail string  `json:"detail"`
}

// Result is the score and the rules behind it
type Result struct {
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning"`
	Reasons   []Reason `json:"reasons"`
}

// Engine computes scores. It has no state beyond its weights.
type Engine struct {
	cfg Config
}

// NewEngine creates a new score engine
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score rates a combination. Identical inputs always produce identical results.
func (e *Engine) Score(in Input) (Result, error) {
	if err := in.Numbers.Validate(); err != nil {
		return Result{}, err
	}
	if in.Distribution.Sum() != domain.PickSize {
		return Result{}, fmt.Errorf("%w: quadrant distribution sums to %d", domain.ErrInvalidDraw, in.Distribution.Sum())
	}
	if in.Profiles == nil {
		return Result{}, fmt.Errorf("score: frequency profiles are required")
	}

	hot, cold := 0, 0
	for _, n := range in.Numbers {
		p, err := in.Profiles.Profile(n)
		if err != nil {
			return Result{}, err
		}
		if p.Hot {
			hot++
		}
		if p.Cold {
			cold++
		}
	}

	total := e.cfg.Base
	reasons := make([]Reason, 0, 4)

	balance := e.balanceBonus(in.Distribution)
	total += balance
	reasons = append(reasons, Reason{
		Rule:   "balance",
		Points: balance,
		Detail: fmt.Sprintf("balanced across %d quadrants", in.Distribution.Represented()),
	})

	if coverage, detail := e.coverageBonus(hot, cold); detail != "" {
		total += coverage
		reasons = append(reasons, Reason{Rule: "coverage", Points: coverage, Detail: detail})
	}

	evens := in.Numbers.Evens()
	parity := Reason{Rule: "parity", Detail: fmt.Sprintf("%d even / %d odd", evens, domain.PickSize-evens)}
	if in.ParityRelaxed {
		parity.Points = -e.cfg.ParityRelaxedPenalty
		parity.Detail = "parity relaxed: " + parity.Detail
	}
	total += parity.Points
	reasons = append(reasons, parity)

	if in.HistoricalCheck {
		reasons = append(reasons, Reason{Rule: "history", Detail: "no historical repeat"})
	} else {
		total -= e.cfg.RepeatPenalty
		reasons = append(reasons, Reason{Rule: "history", Points: -e.cfg.RepeatPenalty, Detail: "repeats a past draw"})
	}

	score := int(math.Round(total))
	score = max(0, min(100, score))

	details := make([]string, len(reasons))
	for i, r := range reasons {
		details[i] = r.Detail
	}

	return Result{
		Score:     score,
		Reasoning: strings.Join(details, "; "),
		Reasons:   reasons,
	}, nil
}

// balanceBonus inverts the squared deviation from 1.5 numbers per quadrant,
// normalised over [minDeviation, maxDeviation].
func (e *Engine) balanceBonus(d domain.QuadrantDistribution) float64 {
	deviation := 0.0
	for _, v := range d {
		diff := float64(v) - idealPerQuadrant
		deviation += diff * diff
	}
	ratio := (deviation - minDeviation) / (maxDeviation - minDeviation)
	ratio = math.Max(0, math.Min(1, ratio))
	return e.cfg.MaxBalanceBonus * (1 - ratio)
}

func (e *Engine) coverageBonus(hot, cold int) (float64, string) {
	switch {
	case hot > 0 && cold > 0:
		return e.cfg.MixedCoverageBonus, fmt.Sprintf("mixes %d hot and %d cold %s", hot, cold, plural(cold, "number"))
	case hot > 0:
		return e.cfg.PartialCoverageBonus, fmt.Sprintf("includes %d hot %s", hot, plural(hot, "number"))
	case cold > 0:
		return e.cfg.PartialCoverageBonus, fmt.Sprintf("includes %d cold %s", cold, plural(cold, "number"))
	default:
		return 0, ""
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
