package analysis

import (
	"errors"

	"irisdash/internal/domain"
)

// Result is the outcome of one callback
type Result struct {
	Indices []int
	Figure  *domain.Figure
	Fit     *domain.Regression
	// FitErr is set when a fit was requested but the filtered points could
	// not support one. The figure is still valid without the line.
	FitErr error
}

// Run filters the dataset, fits a line when the state asks for one and builds
// the figure.
func Run(ds *domain.Dataset, state domain.FilterState, opts FigureOptions) (Result, error) {
	indices, err := Filter(ds, state)
	if err != nil {
		return Result{}, err
	}

	res := Result{Indices: indices}
	if state.Regression {
		xs, ys := Points(ds, indices, state.XColumn, state.YColumn)
		fit, err := Fit(xs, ys)
		switch {
		case err == nil:
			fit.XColumn = state.XColumn
			fit.YColumn = state.YColumn
			res.Fit = &fit
		case errors.Is(err, domain.ErrInsufficientData):
			res.FitErr = err
		default:
			return Result{}, err
		}
	}

	res.Figure, err = BuildFigure(ds, state, indices, res.Fit, opts)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
