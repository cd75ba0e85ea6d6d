package domain

import (
	"encoding/json"
	"fmt"
)

type quadrantJSON struct {
	Q1 int `json:"q1"`
	Q2 int `json:"q2"`
	Q3 int `json:"q3"`
	Q4 int `json:"q4"`
}

// MarshalJSON encodes the distribution as {"q1":..,"q2":..,"q3":..,"q4":..}.
func (d QuadrantDistribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(quadrantJSON{Q1: d[Q1], Q2: d[Q2], Q3: d[Q3], Q4: d[Q4]})
}

// UnmarshalJSON decodes the {"q1".."q4"} object form.
func (d *QuadrantDistribution) UnmarshalJSON(data []byte) error {
	var q quadrantJSON
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	*d = QuadrantDistribution{q.Q1, q.Q2, q.Q3, q.Q4}
	return nil
}

// UnmarshalJSON accepts an array of exactly 6 numbers in any order.
func (c *Combination) UnmarshalJSON(data []byte) error {
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraw, err)
	}
	parsed, err := NewCombination(numbers...)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
