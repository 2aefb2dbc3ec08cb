// Package mapplot renders state crash maps with gonum/plot.
package mapplot

import (
	"context"
	"fmt"
	"image/color"
	"io"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/fars-data/internal/domain"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

const defaultSize = 6 * vg.Inch

var (
	pointColor   = color.RGBA{R: 196, G: 30, B: 58, A: 255}
	outlineColor = color.Gray{Y: 96}
)

// OutlineSource provides the polygon rings of a state.
type OutlineSource interface {
	Outline(state int) ([]orb.Ring, bool)
}

// Renderer draws a StateMap as a scatter plot of crash positions and writes
// the encoded image to its writer.
type Renderer struct {
	w        io.Writer
	format   string
	width    vg.Length
	height   vg.Length
	outlines OutlineSource
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormat sets the image format: png, svg or pdf.
func WithFormat(format string) Option {
	return func(r *Renderer) { r.format = format }
}

// WithSize sets the image dimensions.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// WithOutlines draws state outlines behind the crash points.
func WithOutlines(src OutlineSource) Option {
	return func(r *Renderer) { r.outlines = src }
}

// NewRenderer returns a Renderer writing PNG images to w unless configured
// otherwise.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:      w,
		format: FormatPNG,
		width:  defaultSize,
		height: defaultSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidFormat reports whether format is one the renderer can encode.
func ValidFormat(format string) bool {
	switch format {
	case FormatPNG, FormatSVG, FormatPDF:
		return true
	}
	return false
}

// ContentType returns the media type of an encoded format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// RenderStateMap implements domain.MapRenderer.
func (r *Renderer) RenderStateMap(ctx context.Context, m domain.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidFormat(r.format) {
		return fmt.Errorf("render map: unsupported format %q", r.format)
	}

	p, err := r.build(m)
	if err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	wt, err := p.WriterTo(r.width, r.height, r.format)
	if err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	if _, err := wt.WriteTo(r.w); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}

func (r *Renderer) build(m domain.StateMap) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("State %d, %d", m.State, m.Year)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	if r.outlines != nil {
		if rings, ok := r.outlines.Outline(m.State); ok {
			for _, ring := range rings {
				line, err := ringLine(ring)
				if err != nil {
					return nil, err
				}
				p.Add(line)
			}
		}
	}

	points := m.Points()
	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = pt.Lon
			xys[i].Y = pt.Lat
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = pointColor
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
	}

	// Axis ranges follow the crash positions, not the outline.
	if m.Bounds.Valid {
		p.X.Min, p.X.Max = m.Bounds.MinLon, m.Bounds.MaxLon
		p.Y.Min, p.Y.Max = m.Bounds.MinLat, m.Bounds.MaxLat
	}
	return p, nil
}

func ringLine(ring orb.Ring) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(ring))
	for i, pt := range ring {
		xys[i].X = pt.Lon()
		xys[i].Y = pt.Lat()
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = outlineColor
	line.LineStyle.Width = vg.Points(0.75)
	return line, nil
}
