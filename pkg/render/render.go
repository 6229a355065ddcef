package render

import (
	"bytes"
	"encoding/xml"

	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/view"
)

// Diagram is a model with a validated view.
type Diagram interface {
	Model() *model.Model
	View() *view.View
	Label(id string) string
}

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatSVG    Format = "svg"    // Graphviz layout of the node-link export
	FormatDOT    Format = "dot"    // Graphviz source
	FormatStates Format = "states" // plain SVG of the view states
)

// Formats lists the supported formats.
var Formats = []Format{FormatSVG, FormatDOT, FormatStates}

// DrawOrder returns the cells that have a state, starting below the current
// root (or the model root) in child order, so later cells paint on top.
func DrawOrder(d Diagram) []*view.CellState {
	m, v := d.Model(), d.View()
	root := v.CurrentRoot()
	if root == "" {
		root = m.Root()
	}
	var out []*view.CellState
	var walk func(id string)
	walk = func(id string) {
		for _, child := range m.Children(id) {
			if s := v.State(child); s != nil {
				out = append(out, s)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// escape returns s with XML special characters escaped.
func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
