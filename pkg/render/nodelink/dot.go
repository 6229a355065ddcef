package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cellgraph/pkg/render"
	"github.com/matzehuels/cellgraph/pkg/style"
	"github.com/matzehuels/cellgraph/pkg/view"
)

// pointsPerInch converts view coordinates to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the cell ID and bounds in node labels.
	Detailed bool

	// Positioned pins nodes to their view coordinates.
	Positioned bool
}

// ToDOT converts the visible cells of d to Graphviz DOT format. Cells
// without a state (hidden, or inside a collapsed container) are left out;
// edges connect the states they are drawn between.
func ToDOT(d render.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Positioned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  inputscale=72;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontsize=11];\n")
	buf.WriteString("\n")

	var edges []*view.CellState
	w := writer{d: d, opts: opts, buf: &buf, edges: &edges}
	root := d.View().CurrentRoot()
	if root == "" {
		root = d.Model().Root()
	}
	w.children(root, "  ")

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.VisibleSource, e.VisibleTarget, strings.Join(edgeAttrs(d, e), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

type writer struct {
	d     render.Diagram
	opts  Options
	buf   *bytes.Buffer
	edges *[]*view.CellState
}

// children writes the vertices below id and collects the edges. Vertices
// with vertex children become clusters.
func (w writer) children(id, indent string) {
	m, v := w.d.Model(), w.d.View()
	for _, child := range m.Children(id) {
		s := v.State(child)
		switch {
		case s == nil:
			continue
		case m.IsEdge(child):
			if s.VisibleSource != "" && s.VisibleTarget != "" {
				*w.edges = append(*w.edges, s)
			}
		case m.IsVertex(child) && !m.IsCollapsed(child) && len(m.ChildVertices(child)) > 0:
			fmt.Fprintf(w.buf, "%ssubgraph %q {\n", indent, "cluster_"+child)
			fmt.Fprintf(w.buf, "%s  label=%q;\n", indent, w.d.Label(child))
			w.children(child, indent+"  ")
			fmt.Fprintf(w.buf, "%s}\n", indent)
		case m.IsVertex(child):
			fmt.Fprintf(w.buf, "%s%q [%s];\n", indent, child, strings.Join(w.nodeAttrs(s), ", "))
			w.children(child, indent)
		default:
			w.children(child, indent)
		}
	}
}

func (w writer) nodeAttrs(s *view.CellState) []string {
	attrs := []string{fmt.Sprintf("label=%q", w.label(s)), fmt.Sprintf("id=%q", "cell-"+s.Cell)}
	switch shape, _ := s.Style.Get(style.KeyShape); shape {
	case "ellipse":
		attrs = append(attrs, "shape=ellipse")
	case "rhombus":
		attrs = append(attrs, "shape=diamond")
	}
	if c, ok := s.Style.Get(style.KeyFillColor); ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if c, ok := s.Style.Get(style.KeyStrokeColor); ok {
		attrs = append(attrs, fmt.Sprintf("color=%q", c))
	}
	if c, ok := s.Style.Get(style.KeyFontColor); ok {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", c))
	}
	if s.Style.Flag(style.KeyDashed, false) {
		attrs = append(attrs, `style="filled,dashed"`)
	} else if s.Style.Flag(style.KeyRounded, false) {
		attrs = append(attrs, `style="rounded,filled"`)
	}
	if w.opts.Positioned {
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", num(s.CenterX()), num(-s.CenterY())),
			fmt.Sprintf("width=%s", num(s.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(s.Height/pointsPerInch)),
			"fixedsize=true")
	}
	return attrs
}

func (w writer) label(s *view.CellState) string {
	label := w.d.Label(s.Cell)
	if !w.opts.Detailed {
		return label
	}
	parts := []string{"id: " + s.Cell}
	if label != "" {
		parts = append([]string{label}, parts...)
	}
	parts = append(parts, fmt.Sprintf("bounds: %s,%s %sx%s", num(s.X), num(s.Y), num(s.Width), num(s.Height)))
	return strings.Join(parts, "\n")
}

func edgeAttrs(d render.Diagram, s *view.CellState) []string {
	attrs := []string{fmt.Sprintf("id=%q", "cell-"+s.Cell)}
	if label := d.Label(s.Cell); label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	if c, ok := s.Style.Get(style.KeyStrokeColor); ok {
		attrs = append(attrs, fmt.Sprintf("color=%q", c))
	}
	if s.Style.Flag(style.KeyDashed, false) {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg header with one whose size
// matches its viewBox in user units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
