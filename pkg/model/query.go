package model

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// =============================================================================
// Lookup
// =============================================================================

// Cell returns the cell with the given ID, attached or detached, or nil.
// The returned cell is owned by the model and must not be modified.
func (m *Model) Cell(id string) *cell.Cell {
	return m.cells[id]
}

// Root returns the ID of the root cell.
func (m *Model) Root() string { return m.root }

// Contains reports whether id is reachable from the root.
func (m *Model) Contains(id string) bool {
	return m.root != "" && m.IsAncestor(m.root, id)
}

// IsRoot reports whether id is the current root.
func (m *Model) IsRoot(id string) bool { return id != "" && id == m.root }

// IsLayer reports whether id is a direct child of the root.
func (m *Model) IsLayer(id string) bool {
	c := m.cells[id]
	return c != nil && c.Parent != "" && m.IsRoot(c.Parent)
}

// IsAncestor reports whether parent is child or one of its ancestors.
func (m *Model) IsAncestor(parent, child string) bool {
	if parent == "" {
		return false
	}
	for child != "" {
		if child == parent {
			return true
		}
		c := m.cells[child]
		if c == nil {
			return false
		}
		child = c.Parent
	}
	return false
}

// NearestCommonAncestor returns the deepest cell that is an ancestor of
// both a and b (a cell counts as its own ancestor), or "".
func (m *Model) NearestCommonAncestor(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	seen := make(map[string]bool)
	for id := a; id != ""; {
		seen[id] = true
		c := m.cells[id]
		if c == nil {
			break
		}
		id = c.Parent
	}
	for id := b; id != ""; {
		if seen[id] {
			return id
		}
		c := m.cells[id]
		if c == nil {
			break
		}
		id = c.Parent
	}
	return ""
}

// =============================================================================
// Tree
// =============================================================================

// Parent returns the parent ID of id, or "".
func (m *Model) Parent(id string) string {
	if c := m.cells[id]; c != nil {
		return c.Parent
	}
	return ""
}

// Children returns a copy of the child IDs of id.
func (m *Model) Children(id string) []string {
	if c := m.cells[id]; c != nil {
		return slices.Clone(c.Children)
	}
	return nil
}

// ChildCount returns the number of children of id.
func (m *Model) ChildCount(id string) int {
	if c := m.cells[id]; c != nil {
		return len(c.Children)
	}
	return 0
}

// ChildAt returns the child of id at index, or "" if out of range.
func (m *Model) ChildAt(id string, index int) string {
	c := m.cells[id]
	if c == nil || index < 0 || index >= len(c.Children) {
		return ""
	}
	return c.Children[index]
}

// ChildVertices returns the children of id that are vertices.
func (m *Model) ChildVertices(id string) []string {
	return m.childCells(id, true, false)
}

// ChildEdges returns the children of id that are edges.
func (m *Model) ChildEdges(id string) []string {
	return m.childCells(id, false, true)
}

func (m *Model) childCells(id string, vertices, edges bool) []string {
	var out []string
	for _, child := range m.Children(id) {
		c := m.cells[child]
		if (vertices && c.Vertex) || (edges && c.Edge) {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns id and all its descendants in depth-first pre-order.
func (m *Model) Descendants(id string) []string {
	return m.FilterDescendants(id, nil)
}

// FilterDescendants returns id and its descendants, in depth-first
// pre-order, for which keep reports true. A nil keep keeps everything.
func (m *Model) FilterDescendants(id string, keep func(*cell.Cell) bool) []string {
	var out []string
	var walk func(string)
	walk = func(cur string) {
		c := m.cells[cur]
		if c == nil {
			return
		}
		if keep == nil || keep(c) {
			out = append(out, cur)
		}
		for _, child := range c.Children {
			walk(child)
		}
	}
	walk(id)
	return out
}

// TopmostCells returns the IDs in ids that have no ancestor in ids,
// preserving order.
func (m *Model) TopmostCells(ids []string) []string {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var out []string
	for _, id := range ids {
		top := true
		for p := m.Parent(id); p != ""; p = m.Parent(p) {
			if set[p] {
				top = false
				break
			}
		}
		if top {
			out = append(out, id)
		}
	}
	return out
}

// Origin returns the absolute model position of the origin of id: the sum
// of the geometry positions of id and its ancestors. Edges do not add their
// own position.
func (m *Model) Origin(id string) geometry.Point {
	c := m.cells[id]
	if c == nil {
		return geometry.Point{}
	}
	p := m.Origin(c.Parent)
	if !c.Edge && c.Geometry != nil {
		p.X += c.Geometry.X
		p.Y += c.Geometry.Y
	}
	return p
}

// =============================================================================
// Edges
// =============================================================================

// Terminal returns the source or target terminal of edge. It returns "" if
// the edge is part of the graph but its terminal is not.
func (m *Model) Terminal(edge string, source bool) string {
	c := m.cells[edge]
	if c == nil {
		return ""
	}
	t := c.Terminal(source)
	if t != "" && m.Contains(edge) && !m.Contains(t) {
		return ""
	}
	return t
}

// EdgeCount returns the number of edges connected to id.
func (m *Model) EdgeCount(id string) int {
	if c := m.cells[id]; c != nil {
		return len(c.Edges)
	}
	return 0
}

// Edges returns the edges connected to id. Incoming edges have id as
// target, outgoing edges have id as source. Loops are included when
// includeLoops is set and either direction is requested.
func (m *Model) Edges(id string, incoming, outgoing, includeLoops bool) []string {
	c := m.cells[id]
	if c == nil {
		return nil
	}
	var out []string
	for _, e := range c.Edges {
		ec := m.cells[e]
		if ec == nil {
			continue
		}
		src, trg := m.Terminal(e, true), m.Terminal(e, false)
		switch {
		case src == id && trg == id:
			if includeLoops && (incoming || outgoing) {
				out = append(out, e)
			}
		case (incoming && trg == id) || (outgoing && src == id):
			out = append(out, e)
		}
	}
	return out
}

// ConnectedEdges returns all edges connected to id, loops included.
func (m *Model) ConnectedEdges(id string) []string {
	return m.Edges(id, true, true, true)
}

// IncomingEdges returns the edges whose target is id, loops excluded.
func (m *Model) IncomingEdges(id string) []string {
	return m.Edges(id, true, false, false)
}

// OutgoingEdges returns the edges whose source is id, loops excluded.
func (m *Model) OutgoingEdges(id string) []string {
	return m.Edges(id, false, true, false)
}

// EdgesBetween returns the edges connecting a and b. If directed is set,
// only edges from a to b are returned.
func (m *Model) EdgesBetween(a, b string, directed bool) []string {
	var out []string
	for _, e := range m.ConnectedEdges(a) {
		src, trg := m.Terminal(e, true), m.Terminal(e, false)
		if (src == a && trg == b) || (!directed && src == b && trg == a) {
			out = append(out, e)
		}
	}
	return out
}

// Opposites returns the terminals at the other end of edges, seen from
// terminal. sources and targets select which ends are collected.
func (m *Model) Opposites(edges []string, terminal string, sources, targets bool) []string {
	var out []string
	for _, e := range edges {
		src, trg := m.Terminal(e, true), m.Terminal(e, false)
		switch {
		case src == terminal && trg != "" && trg != terminal && targets:
			out = append(out, trg)
		case trg == terminal && src != "" && src != terminal && sources:
			out = append(out, src)
		}
	}
	return out
}

// =============================================================================
// Attributes
// =============================================================================

// IsVertex reports whether id is a vertex.
func (m *Model) IsVertex(id string) bool {
	c := m.cells[id]
	return c != nil && c.Vertex
}

// IsEdge reports whether id is an edge.
func (m *Model) IsEdge(id string) bool {
	c := m.cells[id]
	return c != nil && c.Edge
}

// IsVisible reports whether id is visible.
func (m *Model) IsVisible(id string) bool {
	c := m.cells[id]
	return c != nil && c.Visible
}

// IsCollapsed reports whether id is collapsed.
func (m *Model) IsCollapsed(id string) bool {
	c := m.cells[id]
	return c != nil && c.Collapsed
}

// IsConnectable reports whether id accepts connections.
func (m *Model) IsConnectable(id string) bool {
	c := m.cells[id]
	return c != nil && c.Connectable
}

// Value returns the user value of id.
func (m *Model) Value(id string) any {
	if c := m.cells[id]; c != nil {
		return c.Value
	}
	return nil
}

// Style returns a copy of the style of id.
func (m *Model) Style(id string) style.Style {
	if c := m.cells[id]; c != nil {
		return c.Style.Clone()
	}
	return style.Style{}
}

// Geometry returns a copy of the geometry of id, or nil. Change the copy
// and pass it to [Model.SetGeometry].
func (m *Model) Geometry(id string) *geometry.Geometry {
	if c := m.cells[id]; c != nil {
		return c.Geometry.Clone()
	}
	return nil
}
