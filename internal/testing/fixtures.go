package testing

import (
	"time"

	"github.com/aristath/megasena/internal/domain"
)

// NewDrawFixtures returns a small, hand-picked history of 12 draws, oldest first.
// Contest 12 is the most recent draw.
func NewDrawFixtures() []domain.Draw {
	rows := [][]int{
		{4, 5, 30, 33, 41, 52},
		{9, 37, 39, 41, 43, 49},
		{10, 11, 29, 30, 36, 47},
		{1, 5, 6, 27, 42, 59},
		{1, 2, 6, 16, 19, 46},
		{7, 13, 19, 22, 40, 47},
		{3, 4, 9, 19, 33, 41},
		{4, 17, 37, 38, 47, 53},
		{8, 43, 54, 55, 56, 60},
		{4, 18, 21, 25, 38, 57},
		{15, 25, 37, 38, 58, 59},
		{4, 16, 19, 20, 27, 43},
	}

	start := time.Date(1996, time.March, 11, 0, 0, 0, 0, time.UTC)
	draws := make([]domain.Draw, len(rows))
	for i, r := range rows {
		draws[i] = domain.Draw{
			Contest: i + 1,
			Date:    start.AddDate(0, 0, 7*i),
			Numbers: domain.MustCombination(r...),
		}
	}
	return draws
}

// NewSequentialDraws builds n draws with contests 1..n; pick(i) supplies the numbers of draw i.
func NewSequentialDraws(n int, pick func(i int) domain.Combination) []domain.Draw {
	draws := make([]domain.Draw, n)
	for i := range draws {
		draws[i] = domain.Draw{Contest: i + 1, Numbers: pick(i)}
	}
	return draws
}

// AllCombinationsOf enumerates every 6-number combination of pool, in lexicographic order.
// Used to build stores that cover a whole small pool.
func AllCombinationsOf(pool []int) []domain.Combination {
	var out []domain.Combination
	var idx [domain.PickSize]int
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == domain.PickSize {
			nums := make([]int, domain.PickSize)
			for i, j := range idx {
				nums[i] = pool[j]
			}
			out = append(out, domain.MustCombination(nums...))
			return
		}
		for i := start; i <= len(pool)-(domain.PickSize-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}
