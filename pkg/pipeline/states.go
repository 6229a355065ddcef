package pipeline

import (
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/render"
)

// StateRecord is the serialized view state of one cell.
type StateRecord struct {
	ID     string           `json:"id"`
	Kind   string           `json:"kind"` // vertex or edge
	Label  string           `json:"label,omitempty"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
	Source string           `json:"source,omitempty"` // visible source terminal
	Target string           `json:"target,omitempty"` // visible target terminal
	Points []geometry.Point `json:"points,omitempty"`
}

// States returns the vertex and edge states of g in draw order. Layers
// are left out.
func States(g *graph.Graph) []StateRecord {
	m := g.Model()
	var out []StateRecord
	for _, s := range render.DrawOrder(g) {
		rec := StateRecord{
			ID:     s.Cell,
			Kind:   "vertex",
			Label:  g.Label(s.Cell),
			X:      s.X,
			Y:      s.Y,
			Width:  s.Width,
			Height: s.Height,
		}
		switch {
		case m.IsEdge(s.Cell):
			rec.Kind = "edge"
			rec.Source = s.VisibleSource
			rec.Target = s.VisibleTarget
			rec.Points = s.AbsolutePoints
		case !m.IsVertex(s.Cell):
			continue
		}
		out = append(out, rec)
	}
	return out
}
