// Package render draws a figure server-side for export and for clients that
// cannot run the browser plotting library.
package render

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"
	"strings"

	"irisdash/internal/domain"
)

// Default image size in pixels
const (
	DefaultWidth  = 800
	DefaultHeight = 520
)

// Renderer writes a figure in one image format
type Renderer interface {
	Render(fig *domain.Figure, w io.Writer) error
	Format() string
	ContentType() string
}

// Registry maps format names to renderers
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates a registry holding the given renderers
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}
	for _, rd := range renderers {
		r.Register(rd)
	}
	return r
}

// DefaultRegistry holds the PNG and SVG renderers at the default size
func DefaultRegistry() *Registry {
	return NewRegistry(NewPNG(DefaultWidth, DefaultHeight), NewSVG(DefaultWidth, DefaultHeight))
}

// Register adds or replaces a renderer
func (r *Registry) Register(rd Renderer) {
	r.renderers[strings.ToLower(rd.Format())] = rd
}

// Get looks up a renderer by format name
func (r *Registry) Get(format string) (Renderer, bool) {
	rd, ok := r.renderers[strings.ToLower(format)]
	return rd, ok
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func checkFigure(fig *domain.Figure) error {
	if fig == nil || fig.PointCount() == 0 {
		return domain.ErrEmptyFigure
	}
	return nil
}

// axisRange returns the layout range of an axis, or the padded extent of the
// trace values when the layout leaves it open.
func axisRange(ax domain.Axis, fig *domain.Figure, pick func(domain.Trace) []float64) (float64, float64) {
	if len(ax.Range) == 2 && ax.Range[0] < ax.Range[1] {
		return ax.Range[0], ax.Range[1]
	}
	lo, hi, seen := 0.0, 0.0, false
	for _, tr := range fig.Data {
		for _, v := range pick(tr) {
			if !seen || v < lo {
				lo = v
			}
			if !seen || v > hi {
				hi = v
			}
			seen = true
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return lo - pad, hi + pad
}

func xs(tr domain.Trace) []float64 { return tr.X }
func ys(tr domain.Trace) []float64 { return tr.Y }

// parseHex decodes "#rrggbb" or "#rgb"
func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func traceColor(tr domain.Trace) color.RGBA {
	var hex string
	switch {
	case tr.Marker != nil:
		hex = tr.Marker.Color
	case tr.Line != nil:
		hex = tr.Line.Color
	}
	c, err := parseHex(hex)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}
