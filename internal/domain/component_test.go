package domain

import "testing"

func TestComponentFindAndCount(t *testing.T) {
	root := Component{
		Type: ComponentDiv,
		ID:   "root",
		Children: []Component{
			{Type: ComponentDropdown, ID: "species"},
			{Type: ComponentDiv, Children: []Component{
				{Type: ComponentRangeSlider, ID: "x-range"},
				{Type: ComponentRangeSlider, ID: "y-range"},
			}},
			{Type: ComponentGraph, ID: "graph"},
		},
	}

	if c, ok := root.Find("y-range"); !ok || c.Type != ComponentRangeSlider {
		t.Errorf("Find(y-range) = %+v, %v", c, ok)
	}
	if _, ok := root.Find("missing"); ok {
		t.Error("expected missing component not to be found")
	}
	if n := root.Count(ComponentRangeSlider); n != 2 {
		t.Errorf("expected 2 range sliders, got %d", n)
	}
	if n := root.Count(ComponentDiv); n != 2 {
		t.Errorf("expected 2 divs, got %d", n)
	}
}

func TestFigurePointCount(t *testing.T) {
	fig := Figure{Data: []Trace{
		{Mode: ModeMarkers, Name: "setosa", X: []float64{1, 2}, Y: []float64{1, 2}},
		{Mode: ModeMarkers, Name: "virginica", X: []float64{3}, Y: []float64{3}},
		{Mode: ModeLines, Name: "OLS fit", X: []float64{1, 3}, Y: []float64{1, 3}},
	}}
	if n := fig.PointCount(); n != 3 {
		t.Errorf("PointCount() = %d, want 3", n)
	}
	if _, ok := fig.Trace("OLS fit"); !ok {
		t.Error("expected OLS fit trace")
	}
}

func TestRegressionPredict(t *testing.T) {
	r := Regression{Slope: 2, Intercept: 1}
	if got := r.Predict(3); got != 7 {
		t.Errorf("Predict(3) = %v, want 7", got)
	}
}
