package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Selection is the species multi-select value. The browser may send null, a
// single string, or a list of strings.
type Selection struct {
	values []string
	set    bool
}

// NewSelection creates a selection from a list
func NewSelection(values ...string) Selection {
	return Selection{values: append([]string(nil), values...), set: true}
}

// List coerces the selection to a list. A null selection is an empty list.
func (s Selection) List() []string {
	if len(s.values) == 0 {
		return []string{}
	}
	return append([]string(nil), s.values...)
}

// IsSet reports whether the selection was present in the request
func (s Selection) IsSet() bool {
	return s.set
}

// Contains reports whether a species is selected
func (s Selection) Contains(species string) bool {
	for _, v := range s.values {
		if v == species {
			return true
		}
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s.set = true
	s.values = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one != "" {
			s.values = []string{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("species selection must be null, a string or a list of strings: %w", err)
	}
	s.values = many
	return nil
}

// MarshalJSON implements json.Marshaler
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Normalize returns the range with bounds in ascending order
func (r Range) Normalize() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether v lies within the range, bounds included
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// UnmarshalJSON accepts both {"min":..,"max":..} and the slider's [min, max] form
func (r *Range) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("range must have exactly two values, got %d", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}

	type plain Range
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}

// FilterState is everything one interaction sends to the server
type FilterState struct {
	Species    Selection `json:"species"`
	XColumn    Column    `json:"x_column"`
	YColumn    Column    `json:"y_column"`
	XRange     Range     `json:"x_range"`
	YRange     Range     `json:"y_range"`
	Regression bool      `json:"regression"`
}
