package model

import (
	"reflect"

	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// =============================================================================
// Change Callbacks
// =============================================================================
//
// The xForCellChanged methods apply a value and return the one it replaced.
// They are called by Change.Execute and do not record anything themselves;
// use the Set methods to make recorded changes.

// ValueForCellChanged sets the value of id and returns the previous value.
func (m *Model) ValueForCellChanged(id string, value any) any {
	c := m.cells[id]
	if c == nil {
		return nil
	}
	prev := c.Value
	c.Value = value
	return prev
}

// StyleForCellChanged sets the style of id and returns the previous style.
func (m *Model) StyleForCellChanged(id string, st style.Style) style.Style {
	c := m.cells[id]
	if c == nil {
		return style.Style{}
	}
	prev := c.Style
	c.Style = st
	return prev
}

// GeometryForCellChanged sets the geometry of id and returns the previous
// geometry.
func (m *Model) GeometryForCellChanged(id string, geo *geometry.Geometry) *geometry.Geometry {
	c := m.cells[id]
	if c == nil {
		return nil
	}
	prev := c.Geometry
	c.Geometry = geo
	return prev
}

// CollapsedStateForCellChanged sets the collapsed flag of id and returns the
// previous flag.
func (m *Model) CollapsedStateForCellChanged(id string, collapsed bool) bool {
	c := m.cells[id]
	if c == nil {
		return false
	}
	prev := c.Collapsed
	c.Collapsed = collapsed
	return prev
}

// VisibleStateForCellChanged sets the visible flag of id and returns the
// previous flag.
func (m *Model) VisibleStateForCellChanged(id string, visible bool) bool {
	c := m.cells[id]
	if c == nil {
		return false
	}
	prev := c.Visible
	c.Visible = visible
	return prev
}

// TerminalForCellChanged connects the source or target end of edge to
// terminal and returns the previous terminal. An empty terminal
// disconnects. Whether the connection is allowed is not checked here.
func (m *Model) TerminalForCellChanged(edge, terminal string, isSource bool) string {
	e := m.cells[edge]
	if e == nil {
		return ""
	}
	prev := e.Terminal(isSource)
	if prev != "" && prev != terminal {
		m.removeEdge(prev, e, isSource)
	}
	e.SetTerminal(terminal, isSource)
	if t := m.cells[terminal]; t != nil {
		t.InsertEdge(edge)
	}
	return prev
}

// removeEdge drops e from the edge list of terminal unless the other end of
// e is also connected to it.
func (m *Model) removeEdge(terminal string, e *cell.Cell, isSource bool) {
	t := m.cells[terminal]
	if t == nil {
		return
	}
	if e.Terminal(!isSource) != terminal {
		t.RemoveEdge(e.ID)
	}
}

// ParentForCellChanged moves id into parent at index and returns the
// previous parent. The index is clamped to the valid range. An empty parent
// detaches the cell.
func (m *Model) ParentForCellChanged(id, parent string, index int) string {
	c := m.cells[id]
	if c == nil {
		return ""
	}
	prev := c.Parent
	if parent != "" {
		p := m.cells[parent]
		if p == nil {
			return prev
		}
		if parent != prev || p.ChildIndex(id) != index {
			if old := m.cells[prev]; old != nil {
				old.RemoveChild(id)
			}
			if index < 0 {
				index = len(p.Children)
			}
			p.InsertChild(id, index)
			c.Parent = parent
		}
	} else if prev != "" {
		if old := m.cells[prev]; old != nil {
			old.RemoveChild(id)
		}
		c.Parent = ""
	}
	return prev
}

// RootChanged makes root the model root and returns the previous root.
func (m *Model) RootChanged(root string) string {
	prev := m.root
	m.root = root
	return prev
}

// disconnect removes the edges of id and its descendants from their
// terminals' edge lists. The edges keep their terminal IDs.
func (m *Model) disconnect(id string) {
	c := m.cells[id]
	if c == nil {
		return
	}
	for _, t := range []string{c.Source, c.Target} {
		if tc := m.cells[t]; tc != nil {
			tc.RemoveEdge(id)
		}
	}
	for _, child := range c.Children {
		m.disconnect(child)
	}
}

// connect restores what disconnect removed.
func (m *Model) connect(id string) {
	c := m.cells[id]
	if c == nil {
		return
	}
	if c.Source != "" {
		m.TerminalForCellChanged(id, c.Source, true)
	}
	if c.Target != "" {
		m.TerminalForCellChanged(id, c.Target, false)
	}
	for _, child := range c.Children {
		m.connect(child)
	}
}

// =============================================================================
// Recorded Mutations
// =============================================================================

// SetValue sets the user value of id. Equal values are ignored.
func (m *Model) SetValue(id string, value any) {
	c := m.cells[id]
	if c == nil || reflect.DeepEqual(c.Value, value) {
		return
	}
	m.Execute(NewValueChange(m, id, value))
}

// SetStyle sets the style of id. Equal styles are ignored.
func (m *Model) SetStyle(id string, st style.Style) {
	c := m.cells[id]
	if c == nil || c.Style.Equal(st) {
		return
	}
	m.Execute(NewStyleChange(m, id, st.Clone()))
}

// SetGeometry sets the geometry of id to a copy of geo. Equal geometries
// are ignored.
func (m *Model) SetGeometry(id string, geo *geometry.Geometry) {
	c := m.cells[id]
	if c == nil || c.Geometry.Equal(geo) {
		return
	}
	m.Execute(NewGeometryChange(m, id, geo.Clone()))
}

// SetCollapsed sets the collapsed flag of id.
func (m *Model) SetCollapsed(id string, collapsed bool) {
	c := m.cells[id]
	if c == nil || c.Collapsed == collapsed {
		return
	}
	m.Execute(NewCollapseChange(m, id, collapsed))
}

// SetVisible sets the visible flag of id.
func (m *Model) SetVisible(id string, visible bool) {
	c := m.cells[id]
	if c == nil || c.Visible == visible {
		return
	}
	m.Execute(NewVisibleChange(m, id, visible))
}

// SetTerminal connects the source or target of edge to terminal. An empty
// terminal disconnects that end. With edge parent maintenance on, the edge
// is moved into the nearest common ancestor of its terminals.
func (m *Model) SetTerminal(edge, terminal string, isSource bool) {
	e := m.cells[edge]
	if e == nil || e.Terminal(isSource) == terminal {
		return
	}
	m.BeginUpdate()
	defer m.EndUpdate()
	m.Execute(NewTerminalChange(m, edge, terminal, isSource))
	if m.maintainEdgeParent && terminal != "" {
		m.updateEdgeParent(edge, m.root)
	}
}

// SetTerminals sets both terminals of edge in one update.
func (m *Model) SetTerminals(edge, source, target string) {
	m.BeginUpdate()
	defer m.EndUpdate()
	m.SetTerminal(edge, source, true)
	m.SetTerminal(edge, target, false)
}

// SetRoot replaces the model root with root, which must be registered.
func (m *Model) SetRoot(root string) {
	if root == m.root {
		return
	}
	m.Execute(NewRootChange(m, root))
}

// Add inserts child into parent at index; a negative index appends. A cell
// that is already a child of parent is moved to index. Adding a cell into
// itself or its own subtree is ignored.
func (m *Model) Add(parent, child string, index int) {
	if parent == "" || child == "" || m.cells[parent] == nil || m.cells[child] == nil {
		return
	}
	if m.IsAncestor(child, parent) {
		return
	}
	if index < 0 {
		index = m.ChildCount(parent)
	}
	parentChanged := m.Parent(child) != parent

	m.BeginUpdate()
	defer m.EndUpdate()
	m.Execute(NewChildChange(m, parent, child, index))
	if m.maintainEdgeParent && parentChanged {
		m.updateEdgeParents(child, m.root)
	}
}

// Remove detaches id and its subtree from the graph. Edges outside the
// subtree that are connected to a cell inside it are disconnected from that
// cell first. Removing the root clears the root.
func (m *Model) Remove(id string) {
	c := m.cells[id]
	if c == nil {
		return
	}
	if id == m.root {
		m.SetRoot("")
		return
	}
	if c.Parent == "" {
		return
	}

	m.BeginUpdate()
	defer m.EndUpdate()

	subtree := m.Descendants(id)
	inside := make(map[string]bool, len(subtree))
	for _, d := range subtree {
		inside[d] = true
	}
	for _, d := range subtree {
		for _, e := range append([]string(nil), m.cells[d].Edges...) {
			if inside[e] {
				continue
			}
			ec := m.cells[e]
			if ec == nil {
				continue
			}
			if inside[ec.Source] {
				m.SetTerminal(e, "", true)
			}
			if inside[ec.Target] {
				m.SetTerminal(e, "", false)
			}
		}
	}
	m.Execute(NewChildChange(m, "", id, 0))
}

// =============================================================================
// Edge Parents
// =============================================================================

// updateEdgeParents moves the edges connected to id and its descendants
// into the nearest common ancestor of their terminals.
func (m *Model) updateEdgeParents(id, root string) {
	for _, child := range m.Children(id) {
		m.updateEdgeParents(child, root)
	}
	c := m.cells[id]
	if c == nil {
		return
	}
	for _, e := range append([]string(nil), c.Edges...) {
		if m.IsAncestor(root, e) {
			m.updateEdgeParent(e, root)
		}
	}
}

// updateEdgeParent moves edge into the nearest common ancestor of its
// terminals, translating its geometry by the difference in origins.
// Terminals with relative geometry (ports) count as their parent. Edges are
// not moved into a layer they are not already in.
func (m *Model) updateEdgeParent(edge, root string) {
	source := m.Terminal(edge, true)
	target := m.Terminal(edge, false)
	source = m.nonRelativeTerminal(source)
	target = m.nonRelativeTerminal(target)

	if !m.IsAncestor(root, source) || !m.IsAncestor(root, target) {
		return
	}
	var nca string
	if source == target {
		nca = m.Parent(source)
	} else {
		nca = m.NearestCommonAncestor(source, target)
	}
	if nca == "" || m.Parent(edge) == nca {
		return
	}
	if m.Parent(nca) == m.root && !m.IsAncestor(nca, edge) {
		return
	}

	if geo := m.Geometry(edge); geo != nil {
		o1 := m.Origin(m.Parent(edge))
		o2 := m.Origin(nca)
		geo.Translate(-(o2.X - o1.X), -(o2.Y - o1.Y))
		m.SetGeometry(edge, geo)
	}
	m.Add(nca, edge, m.ChildCount(nca))
}

func (m *Model) nonRelativeTerminal(id string) string {
	for id != "" {
		c := m.cells[id]
		if c == nil || c.Edge || c.Geometry == nil || !c.Geometry.Relative {
			break
		}
		id = c.Parent
	}
	return id
}
