package testing

import (
	"iter"
	"sync"

	"github.com/aristath/megasena/internal/domain"
)

// MockDrawSource is a mock implementation of domain.DrawSource for testing.
// Draws are kept oldest first.
type MockDrawSource struct {
	mu      sync.Mutex
	draws   []domain.Draw
	version uint64
	calls   map[string]int
}

// NewMockDrawSource creates a new mock draw source over the given draws.
func NewMockDrawSource(draws []domain.Draw) *MockDrawSource {
	d := make([]domain.Draw, len(draws))
	copy(d, draws)
	return &MockDrawSource{
		draws:   d,
		version: 1,
		calls:   make(map[string]int),
	}
}

// SetVersion changes the reported snapshot version.
func (m *MockDrawSource) SetVersion(v uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = v
}

// Calls returns how many times the named method was invoked.
func (m *MockDrawSource) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockDrawSource) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// Contains mocks an exact set lookup.
func (m *MockDrawSource) Contains(c domain.Combination) bool {
	m.record("Contains")
	for _, d := range m.draws {
		if d.Numbers == c {
			return true
		}
	}
	return false
}

// All iterates the draws oldest first.
func (m *MockDrawSource) All() iter.Seq[domain.Draw] {
	m.record("All")
	return func(yield func(domain.Draw) bool) {
		for _, d := range m.draws {
			if !yield(d) {
				return
			}
		}
	}
}

// RecentDraws returns up to k draws, most recent first.
func (m *MockDrawSource) RecentDraws(k int) []domain.Draw {
	m.record("RecentDraws")
	if k > len(m.draws) {
		k = len(m.draws)
	}
	out := make([]domain.Draw, 0, max(k, 0))
	for i := len(m.draws) - 1; i >= len(m.draws)-k; i-- {
		out = append(out, m.draws[i])
	}
	return out
}

// Len returns the number of draws.
func (m *MockDrawSource) Len() int {
	return len(m.draws)
}

// Version returns the configured snapshot version.
func (m *MockDrawSource) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
