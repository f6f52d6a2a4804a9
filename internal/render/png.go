package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"irisdash/internal/domain"
)

// PNG renders figures with go-chart
type PNG struct {
	width, height int
}

// NewPNG creates a PNG renderer producing images of the given size
func NewPNG(width, height int) *PNG {
	return &PNG{width: width, height: height}
}

func (p *PNG) Format() string      { return "png" }
func (p *PNG) ContentType() string { return "image/png" }

// Render implements Renderer
func (p *PNG) Render(fig *domain.Figure, w io.Writer) error {
	if err := checkFigure(fig); err != nil {
		return err
	}

	xMin, xMax := axisRange(fig.Layout.XAxis, fig, xs)
	yMin, yMax := axisRange(fig.Layout.YAxis, fig, ys)

	series := []chart.Series{}
	for _, tr := range fig.Data {
		if len(tr.X) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: tr.X,
			YValues: tr.Y,
			Style:   seriesStyle(tr),
		})
	}

	ch := chart.Chart{
		Title:      fig.Layout.Title,
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: fig.Layout.XAxis.Title, Range: &chart.ContinuousRange{Min: xMin, Max: xMax}},
		YAxis:      chart.YAxis{Name: fig.Layout.YAxis.Title, Range: &chart.ContinuousRange{Min: yMin, Max: yMax}},
		Series:     series,
	}
	if fig.Layout.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func seriesStyle(tr domain.Trace) chart.Style {
	c := traceColor(tr)
	col := drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}

	if tr.Mode == domain.ModeLines {
		st := chart.Style{StrokeColor: col, StrokeWidth: 2}
		if tr.Line != nil && tr.Line.Width > 0 {
			st.StrokeWidth = tr.Line.Width
		}
		if tr.Line != nil && tr.Line.Dash != "" {
			st.StrokeDashArray = []float64{6, 4}
		}
		return st
	}

	// points only
	size := 4.0
	if tr.Marker != nil && tr.Marker.Size > 0 {
		size = tr.Marker.Size / 2
	}
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    size,
		DotColor:    col,
	}
}
