package graph

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Remover removes cells from a graph.
type Remover interface {
	RemoveCells(ids []string, includeEdges bool) []string
}

// Grouper groups, ungroups and reorders cells.
type Grouper struct {
	model     *model.Model
	swimlanes *Swimlanes
	remover   Remover
	events    *event.Source
}

// NewGrouper returns the grouping capability over m. Emptied groups are
// removed through remover.
func NewGrouper(m *model.Model, swimlanes *Swimlanes, remover Remover, events *event.Source) *Grouper {
	return &Grouper{model: m, swimlanes: swimlanes, remover: remover, events: events}
}

// GroupCells moves the topmost cells of ids that share the parent of the
// first one into group, placed at the position of that first cell and
// sized to their bounds plus border. An empty group creates a plain
// vertex. It returns the group, or "" if no cell has bounds.
func (gr *Grouper) GroupCells(group string, border float64, ids []string) string {
	cells := gr.cellsForGroup(ids)
	if len(cells) == 0 {
		return ""
	}
	bounds, ok := gr.boundsForGroup(group, cells, border)
	if !ok {
		return ""
	}
	if group == "" {
		group = gr.model.CreateVertex(nil, nil, style.Style{})
	}
	parent := gr.model.Parent(cells[0])
	index := gr.model.Cell(parent).ChildIndex(cells[0])

	gr.model.Batch(func() {
		gr.model.Add(parent, group, index)
		geo := gr.model.Geometry(group)
		if geo == nil {
			geo = &geometry.Geometry{}
		}
		geo.X, geo.Y, geo.Width, geo.Height = bounds.X, bounds.Y, bounds.Width, bounds.Height
		gr.model.SetGeometry(group, geo)
		addCells(gr.model, cells, group, gr.model.ChildCount(group), true)
		gr.events.Fire(event.GroupCells, GroupEvent{Group: group, Border: border, Cells: slices.Clone(cells)})
	})
	return group
}

// cellsForGroup returns the topmost cells of ids that share the parent of
// the first one.
func (gr *Grouper) cellsForGroup(ids []string) []string {
	top := gr.model.TopmostCells(ids)
	if len(top) == 0 {
		return nil
	}
	parent := gr.model.Parent(top[0])
	if parent == "" {
		return nil
	}
	var out []string
	for _, id := range top {
		if gr.model.Parent(id) == parent {
			out = append(out, id)
		}
	}
	return out
}

// boundsForGroup returns the bounds of cells in the coordinates of their
// parent, grown by border and by the header of a swimlane group.
func (gr *Grouper) boundsForGroup(group string, cells []string, border float64) (geometry.Rectangle, bool) {
	var bounds geometry.Rectangle
	found := false
	add := func(r geometry.Rectangle) {
		if found {
			bounds = bounds.Add(r)
		} else {
			bounds, found = r, true
		}
	}
	for _, id := range cells {
		geo := gr.model.Geometry(id)
		if geo == nil {
			continue
		}
		if gr.model.IsEdge(id) {
			pts := slices.Clone(geo.Points)
			for _, p := range []*geometry.Point{geo.SourcePoint, geo.TargetPoint} {
				if p != nil {
					pts = append(pts, *p)
				}
			}
			for _, p := range pts {
				add(geometry.Rectangle{X: p.X, Y: p.Y})
			}
			continue
		}
		if !geo.Relative {
			add(geo.Bounds())
		}
	}
	if !found {
		return bounds, false
	}
	if size := gr.swimlanes.StartSize(group); size.Width > 0 || size.Height > 0 {
		bounds.X -= size.Width
		bounds.Y -= size.Height
		bounds.Width += size.Width
		bounds.Height += size.Height
	}
	return bounds.Grow(border), true
}

// UngroupCells moves the children of each group in ids into the group's
// parent, keeping their absolute position, and removes the emptied groups.
// It returns the moved children.
func (gr *Grouper) UngroupCells(ids []string) []string {
	var moved, emptied []string
	gr.model.Batch(func() {
		for _, id := range ids {
			children := gr.model.Children(id)
			parent := gr.model.Parent(id)
			if len(children) == 0 || parent == "" {
				continue
			}
			addCells(gr.model, children, parent, gr.model.ChildCount(parent), true)
			moved = append(moved, children...)
			emptied = append(emptied, id)
		}
		if len(emptied) > 0 {
			gr.remover.RemoveCells(emptied, true)
		}
		gr.events.Fire(event.UngroupCells, CellsEvent{Cells: slices.Clone(emptied)})
	})
	return moved
}

// OrderCells brings the topmost cells of ids to the front of their
// parent's children, or with back sends them to the back, preserving
// their relative order.
func (gr *Grouper) OrderCells(back bool, ids []string) {
	cells := gr.model.TopmostCells(ids)
	gr.model.Batch(func() {
		for i, id := range cells {
			parent := gr.model.Parent(id)
			if parent == "" {
				continue
			}
			if back {
				gr.model.Add(parent, id, i)
			} else {
				gr.model.Add(parent, id, gr.model.ChildCount(parent)-1)
			}
		}
		gr.events.Fire(event.CellsOrdered, OrderEvent{Cells: slices.Clone(cells), Back: back})
	})
}
