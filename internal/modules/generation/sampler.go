package generation

import (
	"math/rand/v2"

	"github.com/aristath/megasena/internal/domain"
)

// Sampling selects how candidates are drawn from the pool
type Sampling string

const (
	// SamplingUniform draws a uniformly random 6-subset of the pool
	SamplingUniform Sampling = "uniform"
	// SamplingSpread seeds 2 to 4 distinct quadrants with one number each, then fills uniformly
	SamplingSpread Sampling = "spread"
)

// sampler holds per-call scratch space. It is not shared between goroutines.
type sampler struct {
	g       *Generator
	rng     *rand.Rand
	scratch []int
	out     []int
	quads   []int
}

func (g *Generator) newSampler(rng *rand.Rand) *sampler {
	return &sampler{
		g:       g,
		rng:     rng,
		scratch: make([]int, len(g.pool)),
		out:     make([]int, 0, domain.PickSize),
		quads:   make([]int, 0, domain.QuadrantCount),
	}
}

// next returns 6 distinct pool numbers, unsorted. The slice is reused by the next call.
func (s *sampler) next() []int {
	if s.g.cfg.Sampling == SamplingUniform {
		return s.uniform()
	}
	return s.spread()
}

func (s *sampler) uniform() []int {
	copy(s.scratch, s.g.pool)
	s.out = s.out[:0]
	return s.fill(s.scratch)
}

// fill completes s.out with a partial Fisher-Yates shuffle of candidates.
func (s *sampler) fill(candidates []int) []int {
	for i := 0; len(s.out) < domain.PickSize; i++ {
		j := i + s.rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		s.out = append(s.out, candidates[i])
	}
	return s.out
}

func (s *sampler) spread() []int {
	s.out = s.out[:0]

	// quadrants that still have numbers in the pool
	s.quads = s.quads[:0]
	for q, members := range s.g.members {
		if len(members) > 0 {
			s.quads = append(s.quads, q)
		}
	}

	k := 2 + s.rng.IntN(3)
	if k > len(s.quads) {
		k = len(s.quads)
	}

	var chosen uint64
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(s.quads)-i)
		s.quads[i], s.quads[j] = s.quads[j], s.quads[i]

		members := s.g.members[s.quads[i]]
		n := members[s.rng.IntN(len(members))]
		chosen |= 1 << uint(n)
		s.out = append(s.out, n)
	}

	// the rest of the pool, minus the seeds
	rest := s.scratch[:0]
	for _, n := range s.g.pool {
		if chosen&(1<<uint(n)) == 0 {
			rest = append(rest, n)
		}
	}
	return s.fill(rest)
}
