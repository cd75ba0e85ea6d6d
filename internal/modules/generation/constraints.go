package generation

import (
	"fmt"
	"strings"

	"github.com/aristath/megasena/internal/domain"
)

// Constraint identifies one of the hard rules a combination must satisfy.
// They are checked in declaration order and the first failure short-circuits.
type Constraint int

const (
	ConstraintNone Constraint = iota
	// ConstraintRange: 6 distinct numbers in [1,60], all inside the allowed pool
	ConstraintRange
	// ConstraintHistorical: never drawn before
	ConstraintHistorical
	// ConstraintBatch: not already accepted in the current batch
	ConstraintBatch
	// ConstraintQuadrants: at most MaxEmptyQuadrants quadrants without numbers
	ConstraintQuadrants
	// ConstraintParity: 2, 3 or 4 even numbers; dropped when parity is relaxed
	ConstraintParity
)

const (
	minEvens = 2
	maxEvens = 4
)

var constraintNames = [...]string{
	ConstraintNone:       "none",
	ConstraintRange:      "range",
	ConstraintHistorical: "historical",
	ConstraintBatch:      "batch",
	ConstraintQuadrants:  "quadrant_spread",
	ConstraintParity:     "parity",
}

func (c Constraint) String() string {
	if c < 0 || int(c) >= len(constraintNames) {
		return fmt.Sprintf("constraint(%d)", int(c))
	}
	return constraintNames[c]
}

// Rejections counts failed candidates per constraint.
type Rejections [ConstraintParity + 1]int

// Add merges other into r.
func (r *Rejections) Add(other Rejections) {
	for i := range r {
		r[i] += other[i]
	}
}

// Total returns the number of rejected candidates.
func (r Rejections) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

// Map returns the non-zero counts keyed by constraint name.
func (r Rejections) Map() map[string]int {
	out := make(map[string]int)
	for c, v := range r {
		if v > 0 {
			out[Constraint(c).String()] = v
		}
	}
	return out
}

func (r Rejections) String() string {
	var parts []string
	for c, v := range r {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", Constraint(c), v))
		}
	}
	if len(parts) == 0 {
		return "no rejections"
	}
	return strings.Join(parts, " ")
}

// Taken is the set of combinations already accepted in the current batch,
// keyed by Combination.Mask. It is owned by a single coordinator.
type Taken map[uint64]struct{}

// Has reports whether c was already accepted.
func (t Taken) Has(c domain.Combination) bool {
	_, ok := t[c.Mask()]
	return ok
}

// Add records c as accepted.
func (t Taken) Add(c domain.Combination) {
	t[c.Mask()] = struct{}{}
}

// ParityOK reports whether the even count of c is within the 2..4 band.
func ParityOK(c domain.Combination) bool {
	evens := c.Evens()
	return evens >= minEvens && evens <= maxEvens
}

// check is one link of the constraint chain.
type check struct {
	constraint Constraint
	pass       func(in *checkInput) bool
}

type checkInput struct {
	numbers      []int
	combination  domain.Combination
	distribution domain.QuadrantDistribution
	store        domain.DrawSource
	taken        Taken
}

// Violation runs the constraint chain over raw numbers. It returns the first
// constraint they break (ConstraintNone if none) together with the sorted
// combination and its quadrant distribution, which are only valid once the
// range check passed.
func (g *Generator) Violation(store domain.DrawSource, taken Taken, numbers []int, relaxParity bool) (Constraint, domain.Combination, domain.QuadrantDistribution) {
	in := &checkInput{numbers: numbers, store: store, taken: taken}

	for _, ch := range g.chain {
		if relaxParity && ch.constraint == ConstraintParity {
			continue
		}
		if !ch.pass(in) {
			return ch.constraint, in.combination, in.distribution
		}
	}
	return ConstraintNone, in.combination, in.distribution
}

func (g *Generator) buildChain() []check {
	return []check{
		{ConstraintRange, func(in *checkInput) bool {
			c, err := domain.NewCombination(in.numbers...)
			if err != nil {
				return false
			}
			for _, n := range c {
				if g.poolMask&(1<<uint(n)) == 0 {
					return false
				}
			}
			d, err := g.classifier.DistributionOf(c)
			if err != nil {
				return false
			}
			in.combination = c
			in.distribution = d
			return true
		}},
		{ConstraintHistorical, func(in *checkInput) bool {
			return !in.store.Contains(in.combination)
		}},
		{ConstraintBatch, func(in *checkInput) bool {
			return !in.taken.Has(in.combination)
		}},
		{ConstraintQuadrants, func(in *checkInput) bool {
			return in.distribution.Empty() <= g.cfg.MaxEmptyQuadrants
		}},
		{ConstraintParity, func(in *checkInput) bool {
			return ParityOK(in.combination)
		}},
	}
}
