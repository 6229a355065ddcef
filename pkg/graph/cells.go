package graph

import (
	"math"
	"slices"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
	"github.com/matzehuels/cellgraph/pkg/view"
)

// Tolerance is the distance in view coordinates within which a point hits
// an edge.
const Tolerance = 4

// =============================================================================
// Insertion
// =============================================================================

// InsertVertex creates a vertex and adds it to parent, or to the default
// parent for "". It returns the new ID.
func (g *Graph) InsertVertex(parent string, value any, x, y, width, height float64, st style.Style) string {
	id := g.model.CreateVertex(value, geometry.New(x, y, width, height), st)
	g.AddCells([]string{id}, parent, -1, "", "")
	return id
}

// InsertEdge creates an edge from source to target and adds it to parent,
// or to the default parent for "". Either terminal may be "" for a
// dangling end. It returns the new ID.
func (g *Graph) InsertEdge(parent string, value any, source, target string, st style.Style) string {
	id := g.model.CreateEdge(value, nil, st)
	g.AddCells([]string{id}, parent, -1, source, target)
	return id
}

// AddCells adds registered cells to parent starting at index; a negative
// index appends and "" selects the default parent. Non-empty source and
// target connect every added cell. It returns the added IDs.
func (g *Graph) AddCells(ids []string, parent string, index int, source, target string) []string {
	if parent == "" {
		parent = g.DefaultParent()
	}
	g.model.Batch(func() {
		addCells(g.model, ids, parent, index, false)
		for _, id := range ids {
			if source != "" {
				g.model.SetTerminal(id, source, true)
			}
			if target != "" {
				g.model.SetTerminal(id, target, false)
			}
		}
		g.events.Fire(event.CellsAdded, CellsEvent{Cells: slices.Clone(ids)})
	})
	return ids
}

// addCells moves ids into parent at consecutive positions from index. With
// absolute, cells coming from another parent keep their position in model
// coordinates.
func addCells(m *model.Model, ids []string, parent string, index int, absolute bool) {
	if index < 0 {
		index = m.ChildCount(parent)
	}
	target := m.Origin(parent)
	for i, id := range ids {
		previous := m.Parent(id)
		if absolute && previous != "" && previous != parent && id != parent {
			if geo := m.Geometry(id); geo != nil {
				from := m.Origin(previous)
				geo.Translate(from.X-target.X, from.Y-target.Y)
				m.SetGeometry(id, geo)
			}
		}
		pos := index + i
		if previous == parent && pos >= m.ChildCount(parent) {
			pos = m.ChildCount(parent) - 1
		}
		m.Add(parent, id, pos)
	}
}

// =============================================================================
// Removal
// =============================================================================

// RemoveCells removes the deletable cells in ids. With includeEdges the
// edges connected to them and their descendants are removed as well;
// otherwise those edges are disconnected and keep their last end point as
// a terminal point. It returns the removed IDs.
func (g *Graph) RemoveCells(ids []string, includeEdges bool) []string {
	cells := g.deletable(ids)
	if includeEdges {
		cells = g.deletable(g.withAllEdges(cells))
	}
	cells = g.model.TopmostCells(cells)
	if len(cells) == 0 {
		return nil
	}

	removing := make(map[string]bool, len(cells))
	for _, id := range cells {
		removing[id] = true
	}
	g.model.Batch(func() {
		for _, id := range cells {
			for _, edge := range g.allEdges([]string{id}) {
				if removing[edge] {
					continue
				}
				removing[edge] = true
				g.disconnectTerminal(edge, id, true)
				g.disconnectTerminal(edge, id, false)
			}
			g.model.Remove(id)
		}
		g.events.Fire(event.CellsRemoved, CellsEvent{Cells: slices.Clone(cells)})
	})
	return cells
}

// disconnectTerminal disconnects one end of edge if its terminal lies in
// the subtree of removed, keeping the current end point as terminal point.
func (g *Graph) disconnectTerminal(edge, removed string, source bool) {
	terminal := g.model.Terminal(edge, source)
	if terminal == "" || !g.model.IsAncestor(removed, terminal) {
		return
	}
	geo := g.model.Geometry(edge)
	if geo == nil {
		return
	}
	scale, tr := g.view.Scale(), g.view.Translate()
	if s := g.view.State(edge); s != nil && len(s.AbsolutePoints) > 0 {
		n := len(s.AbsolutePoints) - 1
		if source {
			n = 0
		}
		p := s.AbsolutePoints[n]
		geo.SetTerminalPoint(&geometry.Point{X: p.X/scale - tr.X - s.Origin.X, Y: p.Y/scale - tr.Y - s.Origin.Y}, source)
	} else if ts := g.view.State(terminal); ts != nil {
		geo.SetTerminalPoint(&geometry.Point{X: ts.CenterX()/scale - tr.X, Y: ts.CenterY()/scale - tr.Y}, source)
	}
	g.model.SetGeometry(edge, geo)
	g.model.SetTerminal(edge, "", source)
}

func (g *Graph) deletable(ids []string) []string {
	var out []string
	for _, id := range ids {
		if g.CellStyle(id).Flag(style.KeyDeletable, true) {
			out = append(out, id)
		}
	}
	return out
}

// withAllEdges returns ids followed by every edge connected to them or
// their descendants, without duplicates.
func (g *Graph) withAllEdges(ids []string) []string {
	out := slices.Clone(ids)
	for _, e := range g.allEdges(ids) {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// allEdges returns the edges connected to ids and their descendants.
func (g *Graph) allEdges(ids []string) []string {
	var out []string
	for _, id := range ids {
		for _, d := range g.model.Descendants(id) {
			for _, e := range g.model.ConnectedEdges(d) {
				if !slices.Contains(out, e) {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// =============================================================================
// Geometry
// =============================================================================

// MoveCells translates the topmost movable cells in ids by dx, dy.
// Relative vertices move their offset, edges their points. It returns the
// moved IDs.
func (g *Graph) MoveCells(ids []string, dx, dy float64) []string {
	var cells []string
	for _, id := range g.model.TopmostCells(ids) {
		if g.CellStyle(id).Flag(style.KeyMovable, true) {
			cells = append(cells, id)
		}
	}
	if len(cells) == 0 || (dx == 0 && dy == 0) {
		return cells
	}
	g.model.Batch(func() {
		moveCells(g.model, cells, dx, dy)
		g.events.Fire(event.CellsMoved, MoveEvent{Cells: slices.Clone(cells), DX: dx, DY: dy})
	})
	return cells
}

func moveCells(m *model.Model, ids []string, dx, dy float64) {
	for _, id := range ids {
		geo := m.Geometry(id)
		if geo == nil {
			continue
		}
		if geo.Relative && !m.IsEdge(id) {
			off := geometry.Point{}
			if geo.Offset != nil {
				off = *geo.Offset
			}
			geo.Offset = &geometry.Point{X: off.X + dx, Y: off.Y + dy}
		} else {
			geo.Translate(dx, dy)
		}
		m.SetGeometry(id, geo)
	}
}

// ResizeCell sets the bounds of id.
func (g *Graph) ResizeCell(id string, bounds geometry.Rectangle) {
	g.model.Batch(func() {
		resizeCell(g.model, id, bounds)
		g.events.Fire(event.CellsResized, ResizeEvent{Cells: []string{id}, Bounds: []geometry.Rectangle{bounds}})
	})
}

func resizeCell(m *model.Model, id string, bounds geometry.Rectangle) {
	geo := m.Geometry(id)
	if geo == nil {
		geo = &geometry.Geometry{}
	}
	geo.X, geo.Y, geo.Width, geo.Height = bounds.X, bounds.Y, bounds.Width, bounds.Height
	m.SetGeometry(id, geo)
}

// =============================================================================
// Visibility and folding
// =============================================================================

// ToggleCells shows or hides ids, with includeEdges also their connected
// edges. It returns the toggled IDs.
func (g *Graph) ToggleCells(show bool, ids []string, includeEdges bool) []string {
	cells := slices.Clone(ids)
	if includeEdges {
		cells = g.withAllEdges(cells)
	}
	g.model.Batch(func() {
		for _, id := range cells {
			g.model.SetVisible(id, show)
		}
		g.events.Fire(event.CellsToggled, ToggleEvent{Cells: slices.Clone(cells), Show: show})
	})
	return cells
}

// FoldCells collapses or expands ids, with recurse also their descendants.
// Cells whose style is not foldable are skipped. It returns the folded
// IDs.
func (g *Graph) FoldCells(collapse, recurse bool, ids []string) []string {
	var cells []string
	for _, id := range ids {
		if !g.CellStyle(id).Flag(style.KeyFoldable, true) {
			continue
		}
		if recurse {
			cells = append(cells, g.model.Descendants(id)...)
		} else {
			cells = append(cells, id)
		}
	}
	g.model.Batch(func() {
		for _, id := range cells {
			g.model.SetCollapsed(id, collapse)
		}
		g.events.Fire(event.CellsFolded, FoldEvent{Cells: slices.Clone(cells), Collapse: collapse})
	})
	return cells
}

// =============================================================================
// Hit testing
// =============================================================================

// CellAt returns the topmost visible cell whose state contains x, y in view
// coordinates, searching below parent, or below the current root for "".
// Later children are on top.
func (g *Graph) CellAt(x, y float64, parent string, vertices, edges bool) string {
	if parent == "" {
		parent = g.view.CurrentRoot()
	}
	if parent == "" {
		parent = g.model.Root()
	}
	children := g.model.Children(parent)
	for i := len(children) - 1; i >= 0; i-- {
		id := children[i]
		if hit := g.CellAt(x, y, id, vertices, edges); hit != "" {
			return hit
		}
		if !g.model.IsVisible(id) || !((edges && g.model.IsEdge(id)) || (vertices && g.model.IsVertex(id))) {
			continue
		}
		if s := g.view.State(id); s != nil && intersects(s, x, y) {
			return id
		}
	}
	return ""
}

// intersects reports whether x, y hits state s: within [Tolerance] of an
// edge segment, or inside the (unrotated) bounds of a vertex.
func intersects(s *view.CellState, x, y float64) bool {
	if pts := s.AbsolutePoints; len(pts) > 0 {
		p := geometry.Point{X: x, Y: y}
		for i := 1; i < len(pts); i++ {
			if geometry.SegmentDistanceSq(pts[i-1], pts[i], p) <= Tolerance*Tolerance {
				return true
			}
		}
		return false
	}
	if alpha := s.Style.Number(style.KeyRotation, 0); alpha != 0 {
		rad := -alpha * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		cx, cy := s.CenterX(), s.CenterY()
		dx, dy := x-cx, y-cy
		x, y = dx*cos-dy*sin+cx, dy*cos+dx*sin+cy
	}
	return s.Bounds().Contains(x, y)
}
