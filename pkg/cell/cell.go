package cell

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Cell is a vertex, an edge or a container (layer, group, root) in a graph
// model.
//
// Cells reference each other by ID only. Parent and Children form the
// containment tree; Source and Target are the terminals of an edge; Edges
// lists the edges connected to a terminal. All link fields are maintained by
// the model and must not be changed directly on a cell that belongs to one.
//
// A cell is classified by its Vertex and Edge flags, not by type. A cell
// with neither flag set is a container.
type Cell struct {
	ID    string
	Value any

	Parent   string   // ID of the parent cell, "" for the root or a detached cell
	Children []string // Ordered child IDs
	Source   string   // Source terminal ID (edges only)
	Target   string   // Target terminal ID (edges only)
	Edges    []string // IDs of edges connected to this cell

	Geometry *geometry.Geometry
	Style    style.Style

	Vertex      bool
	Edge        bool
	Visible     bool
	Collapsed   bool
	Connectable bool
}

// New returns a container cell, used for roots, layers and groups.
func New(value any, geo *geometry.Geometry, st style.Style) *Cell {
	return &Cell{
		Value:       value,
		Geometry:    geo,
		Style:       st,
		Visible:     true,
		Connectable: true,
	}
}

// NewVertex returns a vertex cell.
func NewVertex(value any, geo *geometry.Geometry, st style.Style) *Cell {
	c := New(value, geo, st)
	c.Vertex = true
	return c
}

// NewEdge returns an edge cell. Edges get a relative geometry when geo is
// nil so their label sits on the edge.
func NewEdge(value any, geo *geometry.Geometry, st style.Style) *Cell {
	if geo == nil {
		geo = &geometry.Geometry{Relative: true}
	}
	c := New(value, geo, st)
	c.Edge = true
	return c
}

// Terminal returns the source or target terminal ID.
func (c *Cell) Terminal(source bool) string {
	if source {
		return c.Source
	}
	return c.Target
}

// SetTerminal sets the source or target terminal ID.
func (c *Cell) SetTerminal(id string, source bool) {
	if source {
		c.Source = id
	} else {
		c.Target = id
	}
}

// ChildIndex returns the position of id in Children, or -1.
func (c *Cell) ChildIndex(id string) int {
	return slices.Index(c.Children, id)
}

// EdgeIndex returns the position of id in Edges, or -1.
func (c *Cell) EdgeIndex(id string) int {
	return slices.Index(c.Edges, id)
}

// Clone returns a copy of the cell's attributes: value (shallow), geometry
// and style (deep) and the flags. ID and all links are left empty.
func (c *Cell) Clone() *Cell {
	return &Cell{
		Value:       c.Value,
		Geometry:    c.Geometry.Clone(),
		Style:       c.Style.Clone(),
		Vertex:      c.Vertex,
		Edge:        c.Edge,
		Visible:     c.Visible,
		Collapsed:   c.Collapsed,
		Connectable: c.Connectable,
	}
}

// InsertChild places id at index in Children, clamping index to
// [0, len(Children)]. A negative index appends.
func (c *Cell) InsertChild(id string, index int) {
	if index < 0 || index > len(c.Children) {
		index = len(c.Children)
	}
	c.Children = slices.Insert(c.Children, index, id)
}

// RemoveChild removes id from Children and returns its former index, or -1.
func (c *Cell) RemoveChild(id string) int {
	i := c.ChildIndex(id)
	if i >= 0 {
		c.Children = slices.Delete(c.Children, i, i+1)
	}
	return i
}

// InsertEdge records edge id as connected. Loops are recorded once.
func (c *Cell) InsertEdge(id string) {
	if c.EdgeIndex(id) < 0 {
		c.Edges = append(c.Edges, id)
	}
}

// RemoveEdge forgets edge id.
func (c *Cell) RemoveEdge(id string) {
	if i := c.EdgeIndex(id); i >= 0 {
		c.Edges = slices.Delete(c.Edges, i, i+1)
	}
}
