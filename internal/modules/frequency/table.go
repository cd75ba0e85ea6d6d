package frequency

import (
	"fmt"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/pkg/formulas"
)

// Table is an immutable set of profiles for one store snapshot.
type Table struct {
	profiles       [domain.MaxNumber + 1]domain.FrequencyProfile
	quadrantTotals domain.QuadrantDistribution
	version        uint64
	draws          int
	cfg            Config
}

// Point is a chart-ready {name, value} pair
type Point struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Profile returns the profile of n, or ErrOutOfRange.
func (t *Table) Profile(n int) (domain.FrequencyProfile, error) {
	if !domain.InRange(n) {
		return domain.FrequencyProfile{}, fmt.Errorf("%w: %d", domain.ErrOutOfRange, n)
	}
	return t.profiles[n], nil
}

// Profiles returns all 60 profiles in number order.
func (t *Table) Profiles() []domain.FrequencyProfile {
	out := make([]domain.FrequencyProfile, 0, domain.MaxNumber)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		out = append(out, t.profiles[n])
	}
	return out
}

// Hot lists the hot numbers in ascending order.
func (t *Table) Hot() []int {
	out := []int{}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if t.profiles[n].Hot {
			out = append(out, n)
		}
	}
	return out
}

// Cold lists the cold numbers in ascending order.
func (t *Table) Cold() []int {
	out := []int{}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if t.profiles[n].Cold {
			out = append(out, n)
		}
	}
	return out
}

// Points returns draw counts per number for charting ("01".."60").
func (t *Table) Points() []Point {
	out := make([]Point, 0, domain.MaxNumber)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		out = append(out, Point{Name: fmt.Sprintf("%02d", n), Value: t.profiles[n].Count})
	}
	return out
}

// QuadrantPoints returns how many drawn numbers fell in each quadrant.
func (t *Table) QuadrantPoints() []Point {
	out := make([]Point, 0, domain.QuadrantCount)
	for q, v := range t.quadrantTotals {
		out = append(out, Point{Name: domain.Quadrant(q).String(), Value: v})
	}
	return out
}

// QuadrantTotals returns the historical quadrant tally.
func (t *Table) QuadrantTotals() domain.QuadrantDistribution {
	return t.quadrantTotals
}

// ZScore is how far the count of n sits from the mean count, in standard deviations.
func (t *Table) ZScore(n int) (float64, error) {
	if !domain.InRange(n) {
		return 0, fmt.Errorf("%w: %d", domain.ErrOutOfRange, n)
	}
	counts := t.counts()
	return formulas.ZScore(float64(t.profiles[n].Count), formulas.Mean(counts), formulas.StdDev(counts)), nil
}

// Uniformity is the chi-square statistic of the counts against an even spread.
func (t *Table) Uniformity() float64 {
	return formulas.ChiSquareUniform(t.counts())
}

// Version is the store version the table was built from.
func (t *Table) Version() uint64 {
	return t.version
}

// Draws is the history length the table was built from.
func (t *Table) Draws() int {
	return t.draws
}

// Windows returns the hot/cold windows used.
func (t *Table) Windows() Config {
	return t.cfg
}

func (t *Table) counts() []float64 {
	counts := make([]float64, 0, domain.MaxNumber)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		counts = append(counts, float64(t.profiles[n].Count))
	}
	return counts
}
