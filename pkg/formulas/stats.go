// Package formulas holds the statistics used by frequency tables and batch summaries.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation; 0 for fewer than two values.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance; 0 for fewer than two values.
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// ZScore standardises x; 0 when the distribution has no spread.
func ZScore(x, mean, stdDev float64) float64 {
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return stat.StdScore(x, mean, stdDev)
}

// ChiSquareUniform measures how far observed counts are from an even spread.
// Returns 0 for empty input or when nothing was observed.
func ChiSquareUniform(observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	total := 0.0
	for _, o := range observed {
		total += o
	}
	if total == 0 {
		return 0
	}

	expected := make([]float64, len(observed))
	for i := range expected {
		expected[i] = total / float64(len(observed))
	}
	return stat.ChiSquare(observed, expected)
}

// Round rounds to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
