// Package history holds the historical draw store and the ways it is loaded.
package history

import (
	"fmt"
	"iter"
	"sort"
	"sync/atomic"

	"github.com/aristath/megasena/internal/domain"
)

var storeVersions atomic.Uint64

// Store is an immutable snapshot of past draws. It is safe for concurrent use
// without locking; reloads build a new Store instead of mutating one.
type Store struct {
	draws   []domain.Draw // oldest first
	masks   map[uint64]struct{}
	version uint64
}

var _ domain.DrawSource = (*Store)(nil)

// NewStore validates and indexes the given draws. Input order does not matter;
// draws are ordered by contest number. Duplicate contest numbers are rejected.
func NewStore(draws []domain.Draw) (*Store, error) {
	sorted := make([]domain.Draw, len(draws))
	copy(sorted, draws)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Contest < sorted[j].Contest
	})

	masks := make(map[uint64]struct{}, len(sorted))
	for i, d := range sorted {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Contest == d.Contest {
			return nil, fmt.Errorf("%w: contest %d appears twice", domain.ErrInvalidDraw, d.Contest)
		}
		masks[d.Numbers.Mask()] = struct{}{}
	}

	return &Store{
		draws:   sorted,
		masks:   masks,
		version: storeVersions.Add(1),
	}, nil
}

// Contains reports whether the exact 6-number set was ever drawn.
func (s *Store) Contains(c domain.Combination) bool {
	_, ok := s.masks[c.Mask()]
	return ok
}

// All iterates the draws oldest first.
func (s *Store) All() iter.Seq[domain.Draw] {
	return func(yield func(domain.Draw) bool) {
		for _, d := range s.draws {
			if !yield(d) {
				return
			}
		}
	}
}

// RecentDraws returns up to k draws, most recent first.
func (s *Store) RecentDraws(k int) []domain.Draw {
	if k <= 0 {
		return []domain.Draw{}
	}
	if k > len(s.draws) {
		k = len(s.draws)
	}

	recent := make([]domain.Draw, 0, k)
	for i := len(s.draws) - 1; i >= len(s.draws)-k; i-- {
		recent = append(recent, s.draws[i])
	}
	return recent
}

// Len returns the amount of draws in the snapshot.
func (s *Store) Len() int {
	return len(s.draws)
}

// Version identifies this snapshot.
func (s *Store) Version() uint64 {
	return s.version
}

// Latest returns the most recent draw, if any.
func (s *Store) Latest() (domain.Draw, bool) {
	if len(s.draws) == 0 {
		return domain.Draw{}, false
	}
	return s.draws[len(s.draws)-1], true
}

// FindByCombination returns every draw whose set equals c.
func (s *Store) FindByCombination(c domain.Combination) []domain.Draw {
	if !s.Contains(c) {
		return nil
	}
	var matches []domain.Draw
	for _, d := range s.draws {
		if d.Numbers == c {
			matches = append(matches, d)
		}
	}
	return matches
}
