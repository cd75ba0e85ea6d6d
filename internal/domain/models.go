// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// MinNumber is the lowest number on the betting slip
	MinNumber = 1
	// MaxNumber is the highest number on the betting slip
	MaxNumber = 60
	// PickSize is the amount of numbers in a draw or a game
	PickSize = 6
	// QuadrantCount is the amount of fixed quadrants the slip is split into
	QuadrantCount = 4
)

// InRange reports whether n is a valid number on the slip.
func InRange(n int) bool {
	return n >= MinNumber && n <= MaxNumber
}

// Combination is a set of 6 distinct numbers in [1,60], sorted ascending.
// It is a value type: copies never share state.
type Combination [PickSize]int

// NewCombination sorts and validates the given numbers.
func NewCombination(numbers ...int) (Combination, error) {
	var c Combination
	if len(numbers) != PickSize {
		return c, fmt.Errorf("%w: expected %d numbers, got %d", ErrInvalidDraw, PickSize, len(numbers))
	}

	copy(c[:], numbers)
	sort.Ints(c[:])

	if err := c.Validate(); err != nil {
		return Combination{}, err
	}
	return c, nil
}

// MustCombination is NewCombination for fixtures and tests; it panics on invalid input.
func MustCombination(numbers ...int) Combination {
	c, err := NewCombination(numbers...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks range, ordering and distinctness.
func (c Combination) Validate() error {
	for i, n := range c {
		if !InRange(n) {
			return fmt.Errorf("%w: %d", ErrOutOfRange, n)
		}
		if i > 0 && c[i-1] >= n {
			if c[i-1] == n {
				return fmt.Errorf("%w: duplicate number %d", ErrInvalidDraw, n)
			}
			return fmt.Errorf("%w: numbers not sorted", ErrInvalidDraw)
		}
	}
	return nil
}

// Mask returns the order-independent set key of the combination (bit n set for number n).
func (c Combination) Mask() uint64 {
	var m uint64
	for _, n := range c {
		m |= 1 << uint(n)
	}
	return m
}

// FromMask rebuilds a combination from a set key.
func FromMask(m uint64) (Combination, error) {
	var c Combination
	if bits.OnesCount64(m) != PickSize {
		return c, fmt.Errorf("%w: mask has %d numbers", ErrInvalidDraw, bits.OnesCount64(m))
	}
	i := 0
	for n := MinNumber; n <= MaxNumber; n++ {
		if m&(1<<uint(n)) != 0 {
			c[i] = n
			i++
		}
	}
	if i != PickSize {
		return Combination{}, fmt.Errorf("%w: mask outside range", ErrOutOfRange)
	}
	return c, nil
}

// Evens counts the even numbers in the combination.
func (c Combination) Evens() int {
	evens := 0
	for _, n := range c {
		if n%2 == 0 {
			evens++
		}
	}
	return evens
}

// Slice returns the numbers as a fresh slice.
func (c Combination) Slice() []int {
	out := make([]int, PickSize)
	copy(out, c[:])
	return out
}

// String formats the combination as "04-11-23-35-47-59".
func (c Combination) String() string {
	parts := make([]string, PickSize)
	for i, n := range c {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, "-")
}

// ParseCombination parses numbers separated by commas, dashes or spaces.
func ParseCombination(s string) (Combination, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '-' || r == ' ' || r == ';'
	})
	numbers := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Combination{}, fmt.Errorf("%w: %q is not a number", ErrInvalidDraw, f)
		}
		numbers = append(numbers, n)
	}
	return NewCombination(numbers...)
}

// Draw is a historical winning draw
type Draw struct {
	Date    time.Time   `json:"date"`
	Contest int         `json:"contest"`
	Numbers Combination `json:"numbers"`
}

// Validate checks the draw invariant.
func (d Draw) Validate() error {
	if d.Contest <= 0 {
		return fmt.Errorf("%w: contest must be positive, got %d", ErrInvalidDraw, d.Contest)
	}
	if err := d.Numbers.Validate(); err != nil {
		return fmt.Errorf("contest %d: %w", d.Contest, err)
	}
	return nil
}

// Quadrant is one of the four fixed 15-number bands of the slip
type Quadrant int

const (
	Q1 Quadrant = iota // top left: 01-05, 11-15, 21-25
	Q2                 // top right: 06-10, 16-20, 26-30
	Q3                 // bottom left: 31-35, 41-45, 51-55
	Q4                 // bottom right: 36-40, 46-50, 56-60
)

// String returns "Q1".."Q4".
func (q Quadrant) String() string {
	return fmt.Sprintf("Q%d", int(q)+1)
}

// QuadrantDistribution counts how many numbers of a combination fall in each quadrant
type QuadrantDistribution [QuadrantCount]int

// Sum returns the total count; 6 for every valid combination.
func (d QuadrantDistribution) Sum() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// Empty counts quadrants with no numbers.
func (d QuadrantDistribution) Empty() int {
	empty := 0
	for _, v := range d {
		if v == 0 {
			empty++
		}
	}
	return empty
}

// Represented counts quadrants with at least one number.
func (d QuadrantDistribution) Represented() int {
	return QuadrantCount - d.Empty()
}

// FrequencyProfile holds per-number statistics derived from the draw history
type FrequencyProfile struct {
	Number int `json:"number"`
	// Count is the amount of draws the number appeared in
	Count int `json:"count"`
	// TurnsSince is 0 when the number is in the most recent draw.
	// For numbers never drawn it equals the history length.
	TurnsSince int  `json:"turnsSince"`
	Seen       bool `json:"seen"`
	Hot        bool `json:"hot"`
	Cold       bool `json:"cold"`
}

// ScoredCombination is an accepted, scored game
type ScoredCombination struct {
	Numbers          Combination          `json:"numbers"`
	Reasoning        string               `json:"reasoning"`
	HistoricalCheck  bool                 `json:"historicalCheck"`
	QuadrantAnalysis QuadrantDistribution `json:"quadrantAnalysis"`
	ProbabilityScore int                  `json:"probabilityScore"`
}

// BatchStatus is the terminal state of a generation request
type BatchStatus string

const (
	BatchStatusComplete       BatchStatus = "complete"
	BatchStatusPartialFailure BatchStatus = "partial_failure"
)

// BatchSummary holds the aggregate statistics behind GeneralAnalysis
type BatchSummary struct {
	AverageScore   float64              `json:"averageScore"`
	ScoreStdDev    float64              `json:"scoreStdDev"`
	QuadrantTotals QuadrantDistribution `json:"quadrantTotals"`
	HotNumbers     int                  `json:"hotNumbers"`
	ColdNumbers    int                  `json:"coldNumbers"`
	DrawsChecked   int                  `json:"drawsChecked"`
}

// GenerationBatch is the response of one generation request
type GenerationBatch struct {
	ID              string              `json:"id"`
	Status          BatchStatus         `json:"status"`
	GeneralAnalysis string              `json:"generalAnalysis"`
	Games           []ScoredCombination `json:"games"`
	Summary         BatchSummary        `json:"summary"`
	Seed            uint64              `json:"seed"`
	Requested       int                 `json:"requested"`
	UnmetSlots      int                 `json:"unmetSlots"`
	RelaxedSlots    int                 `json:"relaxedSlots"`
}

// Partial reports whether some requested slots could not be filled.
func (b *GenerationBatch) Partial() bool {
	return b.UnmetSlots > 0
}

// Err returns a wrapped ErrGenerationExhausted for partial batches and nil otherwise.
func (b *GenerationBatch) Err() error {
	if !b.Partial() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d combinations could not be produced", ErrGenerationExhausted, b.UnmetSlots, b.Requested)
}
