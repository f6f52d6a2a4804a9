package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"irisdash/internal/domain"
)

// AllSpecies labels the group covering every row
const AllSpecies = "all"

// ColumnStats describes one measurement column within a group
type ColumnStats struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// GroupSummary describes the rows of one species, or all rows
type GroupSummary struct {
	Species string                        `json:"species" yaml:"species"`
	Count   int                           `json:"count" yaml:"count"`
	Columns map[domain.Column]ColumnStats `json:"columns" yaml:"columns"`
}

// Summarize computes per-species descriptive statistics, followed by a group
// for the whole table. Std is the sample standard deviation.
func Summarize(ds *domain.Dataset) []GroupSummary {
	groups := make(map[string][]int)
	all := make([]int, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		sp := ds.Row(i).Species
		groups[sp] = append(groups[sp], i)
		all[i] = i
	}

	var out []GroupSummary
	for _, sp := range ds.Species() {
		out = append(out, summarizeGroup(ds, sp, groups[sp]))
	}
	out = append(out, summarizeGroup(ds, AllSpecies, all))
	return out
}

func summarizeGroup(ds *domain.Dataset, name string, indices []int) GroupSummary {
	g := GroupSummary{
		Species: name,
		Count:   len(indices),
		Columns: make(map[domain.Column]ColumnStats),
	}
	for _, col := range domain.NumericColumns() {
		vals := make([]float64, len(indices))
		for i, idx := range indices {
			vals[i], _ = ds.Row(idx).Value(col)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			std = 0
		}
		g.Columns[col] = ColumnStats{
			Mean: mean,
			Std:  std,
			Min:  floats.Min(vals),
			Max:  floats.Max(vals),
		}
	}
	return g
}
