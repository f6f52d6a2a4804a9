package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"irisdash/internal/domain"
)

// SVG renders figures with gonum/plot
type SVG struct {
	width, height int
}

// NewSVG creates an SVG renderer; the size is in pixels at 96 dpi
func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height}
}

func (s *SVG) Format() string      { return "svg" }
func (s *SVG) ContentType() string { return "image/svg+xml" }

// Render implements Renderer
func (s *SVG) Render(fig *domain.Figure, w io.Writer) error {
	if err := checkFigure(fig); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fig.Layout.Title
	p.X.Label.Text = fig.Layout.XAxis.Title
	p.Y.Label.Text = fig.Layout.YAxis.Title
	p.X.Min, p.X.Max = axisRange(fig.Layout.XAxis, fig, xs)
	p.Y.Min, p.Y.Max = axisRange(fig.Layout.YAxis, fig, ys)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, tr := range fig.Data {
		if len(tr.X) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(tr.X))
		for i := range tr.X {
			pts[i].X = tr.X[i]
			pts[i].Y = tr.Y[i]
		}

		if tr.Mode == domain.ModeLines {
			l, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("render svg: trace %q: %w", tr.Name, err)
			}
			l.LineStyle.Color = traceColor(tr)
			l.LineStyle.Width = vg.Points(2)
			if tr.Line != nil && tr.Line.Dash != "" {
				l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
			}
			p.Add(l)
			p.Legend.Add(tr.Name, l)
			continue
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("render svg: trace %q: %w", tr.Name, err)
		}
		sc.GlyphStyle.Color = traceColor(tr)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(tr.Name, sc)
	}

	wt, err := p.WriterTo(pixels(s.width), pixels(s.height), "svg")
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}
