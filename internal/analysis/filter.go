// Package analysis holds the per-interaction computations: the row filter,
// the least squares fit and the figure built from both.
package analysis

import (
	"fmt"

	"irisdash/internal/domain"
)

// Filter returns the indices of rows whose species is selected and whose x and
// y values lie inside the state's ranges. Indices are in dataset order.
func Filter(ds *domain.Dataset, state domain.FilterState) ([]int, error) {
	if !state.XColumn.IsNumeric() {
		return nil, fmt.Errorf("x column: %w: %q", domain.ErrUnknownColumn, state.XColumn)
	}
	if !state.YColumn.IsNumeric() {
		return nil, fmt.Errorf("y column: %w: %q", domain.ErrUnknownColumn, state.YColumn)
	}

	xr := state.XRange.Normalize()
	yr := state.YRange.Normalize()

	selected := make(map[string]struct{})
	for _, s := range state.Species.List() {
		selected[s] = struct{}{}
	}

	indices := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		if _, ok := selected[row.Species]; !ok {
			continue
		}
		x, _ := row.Value(state.XColumn)
		y, _ := row.Value(state.YColumn)
		if xr.Contains(x) && yr.Contains(y) {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// DefaultState selects every species and the full extent of both axes
func DefaultState(ds *domain.Dataset, x, y domain.Column) (domain.FilterState, error) {
	xr, err := ds.Extent(x)
	if err != nil {
		return domain.FilterState{}, fmt.Errorf("x column: %w", err)
	}
	yr, err := ds.Extent(y)
	if err != nil {
		return domain.FilterState{}, fmt.Errorf("y column: %w", err)
	}
	return domain.FilterState{
		Species: domain.NewSelection(ds.Species()...),
		XColumn: x,
		YColumn: y,
		XRange:  xr,
		YRange:  yr,
	}, nil
}

// Points returns the x and y values of the given rows
func Points(ds *domain.Dataset, indices []int, x, y domain.Column) ([]float64, []float64) {
	xs := make([]float64, len(indices))
	ys := make([]float64, len(indices))
	for i, idx := range indices {
		row := ds.Row(idx)
		xs[i], _ = row.Value(x)
		ys[i], _ = row.Value(y)
	}
	return xs, ys
}
