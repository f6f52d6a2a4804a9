package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"irisdash/internal/domain"
)

// FitTraceName is the legend entry of the regression line
const FitTraceName = "OLS fit"

// palette follows Plotly's default qualitative colors
var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#9467bd", "#8c564b", "#e377c2"}

const fitColor = "#d62728"

// FigureOptions controls the non-data parts of a figure
type FigureOptions struct {
	Title  string
	Height int
}

// SpeciesColor returns the marker color of the i-th species
func SpeciesColor(i int) string {
	return palette[i%len(palette)]
}

// BuildFigure turns filtered rows into a plot description. Every selected
// species gets a marker trace, even when the ranges leave it empty, so the
// legend does not jump between interactions. A non-nil fit adds a line across
// the x extent of the filtered points.
func BuildFigure(ds *domain.Dataset, state domain.FilterState, indices []int, fit *domain.Regression, opts FigureOptions) (*domain.Figure, error) {
	if !state.XColumn.IsNumeric() || !state.YColumn.IsNumeric() {
		return nil, fmt.Errorf("%w: axes %q/%q", domain.ErrUnknownColumn, state.XColumn, state.YColumn)
	}

	fig := &domain.Figure{
		Data: []domain.Trace{},
		Layout: domain.FigureLayout{
			Title:      opts.Title,
			XAxis:      domain.Axis{Title: state.XColumn.Title()},
			YAxis:      domain.Axis{Title: state.YColumn.Title()},
			ShowLegend: true,
			Height:     opts.Height,
		},
	}

	// Fixed axis ranges from the full table keep the view steady while filtering
	if xr, err := ds.Extent(state.XColumn); err == nil {
		fig.Layout.XAxis.Range = padded(xr)
	}
	if yr, err := ds.Extent(state.YColumn); err == nil {
		fig.Layout.YAxis.Range = padded(yr)
	}

	byName := make(map[string]*domain.Trace)
	for i, species := range ds.Species() {
		if !state.Species.Contains(species) {
			continue
		}
		fig.Data = append(fig.Data, domain.Trace{
			Type:   "scatter",
			Mode:   domain.ModeMarkers,
			Name:   species,
			X:      []float64{},
			Y:      []float64{},
			Marker: &domain.Marker{Color: SpeciesColor(i), Size: 8},
		})
	}
	for i := range fig.Data {
		byName[fig.Data[i].Name] = &fig.Data[i]
	}

	var xs []float64
	for _, idx := range indices {
		row := ds.Row(idx)
		tr, ok := byName[row.Species]
		if !ok {
			continue
		}
		x, _ := row.Value(state.XColumn)
		y, _ := row.Value(state.YColumn)
		tr.X = append(tr.X, x)
		tr.Y = append(tr.Y, y)
		xs = append(xs, x)
	}

	if fit != nil && len(xs) > 0 {
		lo, hi := floats.Min(xs), floats.Max(xs)
		fig.Data = append(fig.Data, domain.Trace{
			Type: "scatter",
			Mode: domain.ModeLines,
			Name: FitTraceName,
			X:    []float64{lo, hi},
			Y:    []float64{fit.Predict(lo), fit.Predict(hi)},
			Line: &domain.Line{Color: fitColor, Width: 2, Dash: "dash"},
		})
	}

	return fig, nil
}

func padded(r domain.Range) []float64 {
	pad := (r.Max - r.Min) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return []float64{r.Min - pad, r.Max + pad}
}
