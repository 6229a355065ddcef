package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
	"github.com/matzehuels/cellgraph/pkg/view"
)

const (
	defaultPadding = 10
	defaultFill    = "#ffffff"
	defaultStroke  = "#000000"
	defaultFont    = "#000000"
	fontSize       = 11
)

// SVGOption configures [StatesSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding    float64
	background string
	labels     bool
}

// WithPadding sets the margin around the graph bounds.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithoutLabels omits cell labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// StatesSVG draws the states of d at their view coordinates. Vertices are
// drawn as rectangles, ellipses or rhombi by their shape style; edges as
// polylines through their absolute points with an arrow at the target.
// Every element carries the id "cell-<id>".
func StatesSVG(d Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{padding: defaultPadding, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	states := DrawOrder(d)
	bounds := d.View().GraphBounds()
	x, y := bounds.X-r.padding, bounds.Y-r.padding
	w, h := bounds.Width+2*r.padding, bounds.Height+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		x, y, w, h, w, h)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M0,0 L10,5 L0,10 z"/></marker></defs>` + "\n")
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n", x, y, w, h, escape(r.background))
	}

	m, scale := d.Model(), d.View().Scale()
	for _, s := range states {
		switch {
		case m.IsEdge(s.Cell):
			if len(s.AbsolutePoints) > 1 {
				renderEdge(&buf, s, scale)
			}
		case s.Width > 0 || s.Height > 0:
			renderVertex(&buf, s, scale)
		}
	}
	if r.labels {
		for _, s := range states {
			if label := d.Label(s.Cell); label != "" {
				renderLabel(&buf, s, label, scale)
			}
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderVertex(buf *bytes.Buffer, s *view.CellState, scale float64) {
	attrs := strokeAttrs(s.Style, scale, defaultFill)
	if alpha := s.Style.Number(style.KeyRotation, 0); alpha != 0 {
		attrs += fmt.Sprintf(` transform="rotate(%.1f %.1f %.1f)"`, alpha, s.CenterX(), s.CenterY())
	}
	shape, _ := s.Style.Get(style.KeyShape)
	switch shape {
	case "ellipse":
		fmt.Fprintf(buf, `  <ellipse id="cell-%s" cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f"%s/>`+"\n",
			escape(s.Cell), s.CenterX(), s.CenterY(), s.Width/2, s.Height/2, attrs)
	case "rhombus":
		fmt.Fprintf(buf, `  <polygon id="cell-%s" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f"%s/>`+"\n",
			escape(s.Cell), s.CenterX(), s.Y, s.X+s.Width, s.CenterY(), s.CenterX(), s.Y+s.Height, s.X, s.CenterY(), attrs)
	default:
		if s.Style.Flag(style.KeyRounded, false) {
			attrs += fmt.Sprintf(` rx="%.1f"`, math.Min(s.Width, s.Height)*0.15)
		}
		fmt.Fprintf(buf, `  <rect id="cell-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f"%s/>`+"\n",
			escape(s.Cell), s.X, s.Y, s.Width, s.Height, attrs)
	}
}

func renderEdge(buf *bytes.Buffer, s *view.CellState, scale float64) {
	pts := make([]string, len(s.AbsolutePoints))
	for i, p := range s.AbsolutePoints {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `  <polyline id="cell-%s" points="%s"%s marker-end="url(#arrow)"/>`+"\n",
		escape(s.Cell), strings.Join(pts, " "), strokeAttrs(s.Style, scale, "none"))
}

func renderLabel(buf *bytes.Buffer, s *view.CellState, label string, scale float64) {
	pos := geometry.Point{X: s.CenterX(), Y: s.CenterY()}
	if len(s.AbsolutePoints) > 0 {
		pos = s.AbsoluteOffset
	}
	color, ok := s.Style.Get(style.KeyFontColor)
	if !ok {
		color = defaultFont
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		pos.X, pos.Y, fontSize*scale, escape(color), escape(label))
}

func strokeAttrs(st style.Style, scale float64, fill string) string {
	if c, ok := st.Get(style.KeyFillColor); ok && fill != "none" {
		fill = c
	}
	stroke, ok := st.Get(style.KeyStrokeColor)
	if !ok {
		stroke = defaultStroke
	}
	attrs := fmt.Sprintf(` fill="%s" stroke="%s" stroke-width="%.1f"`, escape(fill), escape(stroke), st.Number(style.KeyStrokeWidth, 1)*scale)
	if st.Flag(style.KeyDashed, false) {
		attrs += ` stroke-dasharray="3 3"`
	}
	if o := st.Number(style.KeyOpacity, 100); o < 100 {
		attrs += fmt.Sprintf(` opacity="%.2f"`, o/100)
	}
	return attrs
}
