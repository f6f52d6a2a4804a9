package domain

import (
	"fmt"
	"math"
	"time"
)

// Sample is one row of the iris table
type Sample struct {
	SepalLength float64 `json:"sepal_length" yaml:"sepal_length"`
	SepalWidth  float64 `json:"sepal_width" yaml:"sepal_width"`
	PetalLength float64 `json:"petal_length" yaml:"petal_length"`
	PetalWidth  float64 `json:"petal_width" yaml:"petal_width"`
	Species     string  `json:"species" yaml:"species"`
}

// Value returns the measurement stored under a numeric column
func (s Sample) Value(c Column) (float64, error) {
	switch c {
	case ColumnSepalLength:
		return s.SepalLength, nil
	case ColumnSepalWidth:
		return s.SepalWidth, nil
	case ColumnPetalLength:
		return s.PetalLength, nil
	case ColumnPetalWidth:
		return s.PetalWidth, nil
	}
	return 0, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, c)
}

// DatasetInfo describes where a dataset came from
type DatasetInfo struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Species     []string  `json:"species"`
	LoadedAt    time.Time `json:"loaded_at"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// Dataset is the immutable iris table
type Dataset struct {
	rows    []Sample
	species []string
	info    DatasetInfo
}

// NewDataset builds a dataset from rows. The rows are copied; later changes to
// the input slice are not visible through the dataset.
func NewDataset(rows []Sample, info DatasetInfo) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}

	cp := make([]Sample, len(rows))
	copy(cp, rows)

	seen := make(map[string]struct{})
	var species []string
	for i, r := range cp {
		if r.Species == "" {
			return nil, fmt.Errorf("row %d: empty species", i)
		}
		for _, c := range numericColumns {
			v, _ := r.Value(c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d: %s is not finite", i, c)
			}
		}
		if _, ok := seen[r.Species]; !ok {
			seen[r.Species] = struct{}{}
			species = append(species, r.Species)
		}
	}

	info.Rows = len(cp)
	info.Species = append([]string(nil), species...)
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now()
	}

	return &Dataset{rows: cp, species: species, info: info}, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns row i
func (d *Dataset) Row(i int) Sample {
	return d.rows[i]
}

// Rows returns a copy of the rows at the given indices, in the given order
func (d *Dataset) Rows(indices []int) []Sample {
	out := make([]Sample, 0, len(indices))
	for _, i := range indices {
		out = append(out, d.rows[i])
	}
	return out
}

// All returns a copy of every row
func (d *Dataset) All() []Sample {
	out := make([]Sample, len(d.rows))
	copy(out, d.rows)
	return out
}

// Column returns a copy of a numeric column
func (d *Dataset) Column(c Column) ([]float64, error) {
	if !c.IsNumeric() {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, c)
	}
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i], _ = r.Value(c)
	}
	return out, nil
}

// Species returns the distinct species labels in first-seen order
func (d *Dataset) Species() []string {
	return append([]string(nil), d.species...)
}

// Extent returns the min and max of a numeric column as a Range
func (d *Dataset) Extent(c Column) (Range, error) {
	if !c.IsNumeric() {
		return Range{}, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, c)
	}
	first, _ := d.rows[0].Value(c)
	r := Range{Min: first, Max: first}
	for _, row := range d.rows[1:] {
		v, _ := row.Value(c)
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return r, nil
}

// Info returns the dataset provenance
func (d *Dataset) Info() DatasetInfo {
	info := d.info
	info.Species = d.Species()
	return info
}

// Fingerprint returns the content digest of the source bytes
func (d *Dataset) Fingerprint() string {
	return d.info.Fingerprint
}
