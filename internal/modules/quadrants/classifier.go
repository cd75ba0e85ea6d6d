// Package quadrants maps slip numbers to the four fixed quadrants.
//
// The 1-60 slip is printed as 6 rows of 10. Splitting it down the middle
// (columns 1-5 | 6-10) and across (rows 1-3 | 4-6) gives four 15-number bands:
//
//	Q1: 01-05 11-15 21-25    Q2: 06-10 16-20 26-30
//	Q3: 31-35 41-45 51-55    Q4: 36-40 46-50 56-60
package quadrants

import (
	"fmt"

	"github.com/aristath/megasena/internal/domain"
)

// Classifier is a pure lookup; the zero value is not usable, call New.
type Classifier struct {
	table [domain.MaxNumber + 1]domain.Quadrant
}

// New builds the lookup table once.
func New() *Classifier {
	c := &Classifier{}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		c.table[n] = quadrantOf(n)
	}
	return c
}

func quadrantOf(n int) domain.Quadrant {
	row := (n - 1) / 10
	col := (n - 1) % 10

	q := domain.Q1
	if col >= 5 {
		q++
	}
	if row >= 3 {
		q += 2
	}
	return q
}

// Classify returns the quadrant of n, or ErrOutOfRange.
func (c *Classifier) Classify(n int) (domain.Quadrant, error) {
	if !domain.InRange(n) {
		return 0, fmt.Errorf("%w: %d", domain.ErrOutOfRange, n)
	}
	return c.table[n], nil
}

// DistributionOf tallies the quadrants of every number in the combination.
func (c *Classifier) DistributionOf(comb domain.Combination) (domain.QuadrantDistribution, error) {
	var d domain.QuadrantDistribution
	for _, n := range comb {
		q, err := c.Classify(n)
		if err != nil {
			return domain.QuadrantDistribution{}, err
		}
		d[q]++
	}
	return d, nil
}

// Members lists the numbers of a quadrant in ascending order.
func (c *Classifier) Members(q domain.Quadrant) []int {
	members := make([]int, 0, domain.MaxNumber/domain.QuadrantCount)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if c.table[n] == q {
			members = append(members, n)
		}
	}
	return members
}
