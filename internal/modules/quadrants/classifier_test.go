package quadrants

import (
	"testing"

	"github.com/aristath/megasena/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Bands(t *testing.T) {
	c := New()

	testCases := []struct {
		number int
		want   domain.Quadrant
	}{
		{1, domain.Q1}, {5, domain.Q1}, {15, domain.Q1}, {25, domain.Q1},
		{6, domain.Q2}, {10, domain.Q2}, {20, domain.Q2}, {30, domain.Q2},
		{31, domain.Q3}, {45, domain.Q3}, {51, domain.Q3}, {55, domain.Q3},
		{36, domain.Q4}, {40, domain.Q4}, {50, domain.Q4}, {60, domain.Q4},
	}

	for _, tc := range testCases {
		got, err := c.Classify(tc.number)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "number %d", tc.number)
	}
}

func TestClassify_OutOfRange(t *testing.T) {
	c := New()
	for _, n := range []int{-1, 0, 61, 100} {
		_, err := c.Classify(n)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	}
}

func TestClassify_TotalPartition(t *testing.T) {
	c := New()
	seen := make(map[int]bool)
	for q := domain.Q1; q <= domain.Q4; q++ {
		members := c.Members(q)
		assert.Len(t, members, 15, "quadrant %s", q)
		for _, n := range members {
			assert.False(t, seen[n], "number %d in two quadrants", n)
			seen[n] = true
		}
	}
	assert.Len(t, seen, domain.MaxNumber)
}

func TestDistributionOf(t *testing.T) {
	c := New()

	d, err := c.DistributionOf(domain.MustCombination(1, 2, 6, 31, 36, 60))
	require.NoError(t, err)
	assert.Equal(t, domain.QuadrantDistribution{2, 1, 1, 2}, d)
	assert.Equal(t, 6, d.Sum())

	_, err = c.DistributionOf(domain.Combination{0, 1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}
