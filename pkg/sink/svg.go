package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/slanttower/pkg/dims"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/geom"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale  float64
	title  string
	labels bool
}

// defaultSVGScale is the drawing scale in pixels per millimetre.
const defaultSVGScale = 4

// WithSVGScale sets the drawing scale in pixels per millimetre. Non-positive
// scales fall back to the default.
func WithSVGScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithSVGTitle adds a title line above the drawing.
func WithSVGTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithoutLabels omits face names and footprint labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

const (
	svgMargin = 12.0 // mm around and between panels
	svgTitle  = 8.0  // mm reserved for the title
)

const (
	addFill       = "#4a90d9"
	subtractColor = "#c0392b"
	faceFill      = "#f4f1ea"
	outline       = "#333333"
)

// panel places one face's (u, v) extent in the drawing.
type panel struct {
	face   frame.Face
	extent geom.Rect
	x, y   float64 // top-left corner in mm
}

// layoutPanels unfolds the tower: the side faces in walking order with the
// top above the front.
func layoutPanels(d dims.Dimensions, top float64) ([]panel, float64, float64) {
	var out []panel
	topExt, _ := frame.Extent(d, frame.Top)
	x := svgMargin
	y := top + topExt.Size().Y + svgMargin
	var frontX float64
	for _, face := range []frame.Face{frame.Left, frame.Front, frame.Right, frame.Back} {
		ext, _ := frame.Extent(d, face)
		if face == frame.Front {
			frontX = x
		}
		out = append(out, panel{face: face, extent: ext, x: x, y: y})
		x += ext.Size().X + svgMargin
	}
	out = append(out, panel{face: frame.Top, extent: topExt, x: frontX, y: top})
	return out, x, y + d.Height() + svgMargin
}

// RenderSVG draws the unfolded tower with each face's feature footprints.
func RenderSVG(d dims.Dimensions, marks map[frame.Face][]feature.Mark, opts ...SVGOption) []byte {
	r := svgRenderer{scale: defaultSVGScale, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) {
		r.scale = defaultSVGScale
	}

	top := svgMargin
	if r.title != "" {
		top += svgTitle
	}
	panels, w, h := layoutPanels(d, top)
	s := r.scale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w*s, h*s, w*s, h*s)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f">%s</text>`+"\n",
			svgMargin*s, (svgMargin+svgTitle/2)*s, 5*s, html.EscapeString(r.title))
	}

	for _, p := range panels {
		r.renderPanel(&buf, p, marks[p.face])
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderPanel(buf *bytes.Buffer, p panel, marks []feature.Mark) {
	s := r.scale
	size := p.extent.Size()
	// Face-local v grows upward; SVG y grows downward.
	toSVG := func(u, v float64) (float64, float64) {
		return (p.x + u - p.extent.Min.X) * s, (p.y + p.extent.Max.Y - v) * s
	}

	fmt.Fprintf(buf, `  <g id="face-%s">`+"\n", p.face)
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		p.x*s, p.y*s, size.X*s, size.Y*s, faceFill, outline)

	for _, m := range marks {
		x0, y0 := toSVG(m.Bounds.Min.X, m.Bounds.Max.Y)
		ms := m.Bounds.Size()
		style := fmt.Sprintf(`fill="%s" fill-opacity="0.6" stroke="%s"`, addFill, addFill)
		if m.Role == feature.Subtract {
			style = fmt.Sprintf(`fill="none" stroke="%s" stroke-dasharray="4 2"`, subtractColor)
		}
		switch m.Shape {
		case feature.ShapeCircle:
			cx, cy := toSVG(m.Bounds.Center().X, m.Bounds.Center().Y)
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" %s/>`+"\n", cx, cy, ms.X/2*s, style)
		default:
			fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" %s/>`+"\n",
				x0, y0, ms.X*s, ms.Y*s, style)
		}
		if r.labels && m.Label != "" {
			cx, cy := toSVG(m.Bounds.Center().X, m.Bounds.Center().Y)
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%.1f">%s</text>`+"\n",
				cx, cy, 2.5*s, html.EscapeString(m.Label))
		}
	}

	if r.labels {
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" font-family="sans-serif" font-size="%.1f">%s</text>`+"\n",
			(p.x+size.X/2)*s, (p.y+size.Y+svgMargin/2)*s, 3.5*s, p.face)
	}
	buf.WriteString("  </g>\n")
}
