package model

import (
	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/event"
)

// CloneCells registers detached copies of ids and returns their IDs in the
// same order. With includeChildren, descendants are copied too. Terminal
// links are kept only when the terminal is copied in the same call; links
// to cells outside the set are dropped. Unknown IDs yield "".
func (m *Model) CloneCells(ids []string, includeChildren bool) []string {
	mapping := make(map[string]string)
	clones := make([]string, len(ids))
	for i, id := range ids {
		if m.cells[id] != nil {
			clones[i] = m.cloneCell(id, includeChildren, mapping)
		}
	}
	for i, id := range ids {
		if clones[i] != "" {
			m.restoreClone(clones[i], id, mapping)
		}
	}
	return clones
}

func (m *Model) cloneCell(id string, includeChildren bool, mapping map[string]string) string {
	if clone, ok := mapping[id]; ok {
		return clone
	}
	clone := m.Register(m.cells[id].Clone())
	mapping[id] = clone
	if includeChildren {
		for _, child := range m.cells[id].Children {
			cc := m.cloneCell(child, true, mapping)
			m.cells[cc].Parent = clone
			m.cells[clone].Children = append(m.cells[clone].Children, cc)
		}
	}
	return clone
}

// restoreClone connects clone the way original is connected, for terminals
// that were cloned as well.
func (m *Model) restoreClone(clone, original string, mapping map[string]string) {
	oc, cc := m.cells[original], m.cells[clone]
	for _, source := range []bool{true, false} {
		t := oc.Terminal(source)
		if mt, ok := mapping[t]; ok && t != "" {
			cc.SetTerminal(mt, source)
			m.cells[mt].InsertEdge(clone)
		}
	}
	for i, child := range oc.Children {
		if i < len(cc.Children) {
			m.restoreClone(cc.Children[i], child, mapping)
		}
	}
}

// MergeChildren copies the children of from in src into to, recursively,
// in one update. A child whose ID already exists in m is reused instead of
// copied, except edges when cloneAllEdges is set. Copies keep their IDs
// where possible. Copied edges are reconnected to the copies (or reused
// cells) of their terminals; terminals outside the merged subtree are
// dropped. Edge parents are not adjusted while merging.
func (m *Model) MergeChildren(src *Model, from, to string, cloneAllEdges bool) {
	if src == nil || src.cells[from] == nil || m.cells[to] == nil {
		return
	}
	m.BeginUpdate()
	defer m.EndUpdate()

	maintain := m.maintainEdgeParent
	m.maintainEdgeParent = false
	defer func() { m.maintainEdgeParent = maintain }()

	mapping := make(map[string]string)
	var cloned []string
	var merge func(from, to string)
	merge = func(from, to string) {
		for _, child := range src.cells[from].Children {
			sc := src.cells[child]
			target := ""
			if !sc.Edge || !cloneAllEdges {
				if m.cells[child] != nil {
					target = child
				}
			}
			if target == "" {
				c := sc.Clone()
				c.ID = child
				target = m.Register(c)
				m.Add(to, target, -1)
				cloned = append(cloned, child)
			}
			mapping[child] = target
			merge(child, target)
		}
	}
	merge(from, to)

	for _, id := range cloned {
		sc := src.cells[id]
		for _, source := range []bool{true, false} {
			if t, ok := mapping[sc.Terminal(source)]; ok {
				m.SetTerminal(mapping[id], t, source)
			}
		}
	}
}

// Clear replaces the root with a fresh root holding one empty layer. The
// change is recorded and can be undone.
func (m *Model) Clear() {
	m.SetRoot(m.createRoot())
}

// Snapshot returns copies of all cells reachable from the root in
// depth-first pre-order, links included.
func (m *Model) Snapshot() []*cell.Cell {
	ids := m.Descendants(m.root)
	out := make([]*cell.Cell, 0, len(ids))
	for _, id := range ids {
		c := m.cells[id]
		cp := c.Clone()
		cp.ID = c.ID
		cp.Parent = c.Parent
		cp.Children = append([]string(nil), c.Children...)
		cp.Source = c.Source
		cp.Target = c.Target
		cp.Edges = append([]string(nil), c.Edges...)
		out = append(out, cp)
	}
	return out
}

// Restore returns a model holding copies of cells, which must be in the
// form [Model.Snapshot] produces: the first cell is the root and every
// other cell names a parent in the list. Children are linked in list
// order and edges are connected to their terminals; the Children and
// Edges fields of the input are ignored, as are terminals that are not
// listed. The restored tree is not recorded as an edit.
func Restore(cells []*cell.Cell, opts ...Option) *Model {
	m := &Model{
		cells:              make(map[string]*cell.Cell, len(cells)),
		maintainEdgeParent: true,
	}
	m.events = event.NewSource(m)
	for _, opt := range opts {
		opt(m)
	}
	m.currentEdit = m.createEdit()
	if len(cells) == 0 {
		m.root = m.createRoot()
		return m
	}

	for _, src := range cells {
		c := src.Clone()
		c.ID = src.ID
		c.Parent = src.Parent
		c.Source = src.Source
		c.Target = src.Target
		m.observeID(c.ID)
		m.cells[c.ID] = c
	}
	m.root = cells[0].ID
	m.cells[m.root].Parent = ""
	for _, src := range cells[1:] {
		c := m.cells[src.ID]
		p := m.cells[c.Parent]
		if p == nil {
			c.Parent = ""
			continue
		}
		p.InsertChild(c.ID, -1)
	}
	for _, src := range cells {
		c := m.cells[src.ID]
		for _, source := range []bool{true, false} {
			t := m.cells[c.Terminal(source)]
			if t == nil {
				c.SetTerminal("", source)
				continue
			}
			t.InsertEdge(c.ID)
		}
	}
	return m
}
