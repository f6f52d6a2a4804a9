package domain

// Trace modes
const (
	ModeMarkers = "markers"
	ModeLines   = "lines"
)

// Marker styles scatter points
type Marker struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// Line styles a line trace
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Trace is one series in a figure
type Trace struct {
	Type   string    `json:"type"`
	Mode   string    `json:"mode"`
	Name   string    `json:"name"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Marker *Marker   `json:"marker,omitempty"`
	Line   *Line     `json:"line,omitempty"`
}

// Axis describes one plot axis
type Axis struct {
	Title string    `json:"title"`
	Range []float64 `json:"range,omitempty"`
}

// FigureLayout is the non-data part of a figure
type FigureLayout struct {
	Title      string `json:"title"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	ShowLegend bool   `json:"showlegend"`
	Height     int    `json:"height,omitempty"`
}

// Figure is a plot description the page hands to Plotly unchanged
type Figure struct {
	Data   []Trace      `json:"data"`
	Layout FigureLayout `json:"layout"`
}

// PointCount returns the number of marker points across all traces
func (f *Figure) PointCount() int {
	n := 0
	for _, t := range f.Data {
		if t.Mode == ModeMarkers {
			n += len(t.X)
		}
	}
	return n
}

// Trace returns the trace with the given name
func (f *Figure) Trace(name string) (Trace, bool) {
	for _, t := range f.Data {
		if t.Name == name {
			return t, true
		}
	}
	return Trace{}, false
}
