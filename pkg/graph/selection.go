package graph

import "github.com/matzehuels/cellgraph/pkg/style"

// KeySelectable is the style key that excludes a cell from selection when
// set to false.
const KeySelectable style.Key = "selectable"

// IsCellSelectable reports whether id may be selected: a registered cell
// that is neither the root nor a layer and whose style allows it.
func (g *Graph) IsCellSelectable(id string) bool {
	if g.model.Cell(id) == nil || g.model.IsRoot(id) || g.model.IsLayer(id) {
		return false
	}
	return g.CellStyle(id).Flag(KeySelectable, true)
}

// SelectionCells returns the selected cells in selection order.
func (g *Graph) SelectionCells() []string { return g.selection.Cells() }

// IsCellSelected reports whether id is selected.
func (g *Graph) IsCellSelected(id string) bool { return g.selection.IsSelected(id) }

// SetSelectionCells replaces the selection with ids.
func (g *Graph) SetSelectionCells(ids []string) { g.selection.SetCells(ids) }

// AddSelectionCells adds ids to the selection.
func (g *Graph) AddSelectionCells(ids []string) { g.selection.AddCells(ids) }

// RemoveSelectionCells removes ids from the selection.
func (g *Graph) RemoveSelectionCells(ids []string) { g.selection.RemoveCells(ids) }

// ClearSelection empties the selection.
func (g *Graph) ClearSelection() { g.selection.Clear() }

// SelectCells selects the displayed children of parent, or of the default
// parent for "", that are vertices or edges as requested.
func (g *Graph) SelectCells(vertices, edges bool, parent string) {
	if parent == "" {
		parent = g.DefaultParent()
	}
	var ids []string
	for _, id := range g.model.Children(parent) {
		if g.view.State(id) == nil {
			continue
		}
		if (vertices && g.model.IsVertex(id)) || (edges && g.model.IsEdge(id)) {
			ids = append(ids, id)
		}
	}
	g.SetSelectionCells(ids)
}
