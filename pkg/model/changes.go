package model

import (
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Change is an undoable edit record. Execute swaps the current and the
// recorded value, so two calls in direct succession leave the target
// unchanged. A change is created holding the new value in its Previous
// field; the first Execute applies it.
type Change interface {
	Execute()
}

// CellChange is a change that targets a single cell.
type CellChange interface {
	Change
	CellID() string
}

// ValueChange replaces the user value of a cell.
type ValueChange struct {
	Model    *Model
	Cell     string
	Value    any
	Previous any
}

// NewValueChange returns a change that sets the value of id.
func NewValueChange(m *Model, id string, value any) *ValueChange {
	return &ValueChange{Model: m, Cell: id, Value: value, Previous: value}
}

// Execute implements [Change].
func (c *ValueChange) Execute() {
	c.Value = c.Previous
	c.Previous = c.Model.ValueForCellChanged(c.Cell, c.Previous)
}

// CellID implements [CellChange].
func (c *ValueChange) CellID() string { return c.Cell }

// StyleChange replaces the style of a cell.
type StyleChange struct {
	Model    *Model
	Cell     string
	Style    style.Style
	Previous style.Style
}

// NewStyleChange returns a change that sets the style of id.
func NewStyleChange(m *Model, id string, st style.Style) *StyleChange {
	return &StyleChange{Model: m, Cell: id, Style: st, Previous: st}
}

// Execute implements [Change].
func (c *StyleChange) Execute() {
	c.Style = c.Previous
	c.Previous = c.Model.StyleForCellChanged(c.Cell, c.Previous)
}

// CellID implements [CellChange].
func (c *StyleChange) CellID() string { return c.Cell }

// GeometryChange replaces the geometry of a cell.
type GeometryChange struct {
	Model    *Model
	Cell     string
	Geometry *geometry.Geometry
	Previous *geometry.Geometry
}

// NewGeometryChange returns a change that sets the geometry of id.
func NewGeometryChange(m *Model, id string, geo *geometry.Geometry) *GeometryChange {
	return &GeometryChange{Model: m, Cell: id, Geometry: geo, Previous: geo}
}

// Execute implements [Change].
func (c *GeometryChange) Execute() {
	c.Geometry = c.Previous
	c.Previous = c.Model.GeometryForCellChanged(c.Cell, c.Previous)
}

// CellID implements [CellChange].
func (c *GeometryChange) CellID() string { return c.Cell }

// CollapseChange sets the collapsed flag of a cell.
type CollapseChange struct {
	Model     *Model
	Cell      string
	Collapsed bool
	Previous  bool
}

// NewCollapseChange returns a change that sets the collapsed flag of id.
func NewCollapseChange(m *Model, id string, collapsed bool) *CollapseChange {
	return &CollapseChange{Model: m, Cell: id, Collapsed: collapsed, Previous: collapsed}
}

// Execute implements [Change].
func (c *CollapseChange) Execute() {
	c.Collapsed = c.Previous
	c.Previous = c.Model.CollapsedStateForCellChanged(c.Cell, c.Previous)
}

// CellID implements [CellChange].
func (c *CollapseChange) CellID() string { return c.Cell }

// VisibleChange sets the visible flag of a cell.
type VisibleChange struct {
	Model    *Model
	Cell     string
	Visible  bool
	Previous bool
}

// NewVisibleChange returns a change that sets the visible flag of id.
func NewVisibleChange(m *Model, id string, visible bool) *VisibleChange {
	return &VisibleChange{Model: m, Cell: id, Visible: visible, Previous: visible}
}

// Execute implements [Change].
func (c *VisibleChange) Execute() {
	c.Visible = c.Previous
	c.Previous = c.Model.VisibleStateForCellChanged(c.Cell, c.Previous)
}

// CellID implements [CellChange].
func (c *VisibleChange) CellID() string { return c.Cell }

// TerminalChange connects one end of an edge to a terminal, or
// disconnects it when Terminal is "".
type TerminalChange struct {
	Model    *Model
	Cell     string
	Terminal string
	Previous string
	Source   bool
}

// NewTerminalChange returns a change that sets the source or target of edge.
func NewTerminalChange(m *Model, edge, terminal string, source bool) *TerminalChange {
	return &TerminalChange{Model: m, Cell: edge, Terminal: terminal, Previous: terminal, Source: source}
}

// Execute implements [Change].
func (c *TerminalChange) Execute() {
	c.Terminal = c.Previous
	c.Previous = c.Model.TerminalForCellChanged(c.Cell, c.Previous, c.Source)
}

// CellID implements [CellChange].
func (c *TerminalChange) CellID() string { return c.Cell }

// RootChange replaces the root of the model.
type RootChange struct {
	Model    *Model
	Root     string
	Previous string
}

// NewRootChange returns a change that makes root the model root.
func NewRootChange(m *Model, root string) *RootChange {
	return &RootChange{Model: m, Root: root, Previous: root}
}

// Execute implements [Change].
func (c *RootChange) Execute() {
	c.Root = c.Previous
	c.Previous = c.Model.RootChanged(c.Previous)
}

// ChildChange moves a cell to a new parent at an index, or detaches it
// when Parent is "".
type ChildChange struct {
	Model         *Model
	Parent        string
	Previous      string
	Child         string
	Index         int
	PreviousIndex int
}

// NewChildChange returns a change that inserts child into parent at index.
// An empty parent removes the child from the tree.
func NewChildChange(m *Model, parent, child string, index int) *ChildChange {
	return &ChildChange{
		Model:         m,
		Parent:        parent,
		Previous:      parent,
		Child:         child,
		Index:         index,
		PreviousIndex: index,
	}
}

// Execute implements [Change]. Before the child is detached its edges (and
// those of its descendants) are taken out of their terminals' edge lists;
// after it is attached they are put back. Terminal IDs on the edges are
// kept either way.
func (c *ChildChange) Execute() {
	child := c.Model.cells[c.Child]
	if child == nil {
		return
	}
	oldParent := child.Parent
	oldIndex := 0
	if p := c.Model.cells[oldParent]; p != nil {
		oldIndex = p.ChildIndex(c.Child)
	}

	if c.Previous == "" {
		c.Model.disconnect(c.Child)
	}
	oldParent = c.Model.ParentForCellChanged(c.Child, c.Previous, c.PreviousIndex)
	if c.Previous != "" {
		c.Model.connect(c.Child)
	}

	c.Parent = c.Previous
	c.Previous = oldParent
	c.Index = c.PreviousIndex
	c.PreviousIndex = oldIndex
}

// CellID implements [CellChange].
func (c *ChildChange) CellID() string { return c.Child }

// Refs returns the cell IDs a change refers to. It is used to decide which
// detached cells must survive [Model.Compact].
func Refs(ch Change) []string {
	switch c := ch.(type) {
	case *ChildChange:
		return nonEmpty(c.Child, c.Parent, c.Previous)
	case *TerminalChange:
		return nonEmpty(c.Cell, c.Terminal, c.Previous)
	case *RootChange:
		return nonEmpty(c.Root, c.Previous)
	case CellChange:
		return nonEmpty(c.CellID())
	case interface{ Refs() []string }:
		return c.Refs()
	}
	return nil
}

func nonEmpty(ids ...string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
