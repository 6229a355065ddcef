package selection

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
)

// Filter decides whether a cell may be selected.
type Filter interface {
	IsCellSelectable(id string) bool
}

// ChangeEvent is the payload of the Change event: the cells that were just
// added to and removed from the selection.
type ChangeEvent struct {
	Added   []string
	Removed []string
}

// Model holds the set of selected cells in selection order.
//
// Every change goes through a [Change], executed immediately and published
// as an insignificant edit with an Undo event, so undo managers can replay
// selection changes alongside model edits without counting them as steps.
type Model struct {
	cells  []string
	single bool
	filter Filter
	events *event.Source
}

// New returns an empty selection. A nil filter allows every cell.
func New(filter Filter) *Model {
	s := &Model{filter: filter}
	s.events = event.NewSource(s)
	return s
}

// Events returns the event source firing Change and Undo.
func (s *Model) Events() *event.Source { return s.events }

// SetSingleSelection restricts the selection to at most one cell.
func (s *Model) SetSingleSelection(single bool) { s.single = single }

// IsSingleSelection reports whether only one cell can be selected.
func (s *Model) IsSingleSelection() bool { return s.single }

// Cells returns the selected cells in selection order.
func (s *Model) Cells() []string { return slices.Clone(s.cells) }

// Len returns the number of selected cells.
func (s *Model) Len() int { return len(s.cells) }

// IsEmpty reports whether nothing is selected.
func (s *Model) IsEmpty() bool { return len(s.cells) == 0 }

// IsSelected reports whether id is selected.
func (s *Model) IsSelected(id string) bool { return slices.Contains(s.cells, id) }

// SetCell selects exactly id, or clears the selection for "".
func (s *Model) SetCell(id string) {
	if id == "" {
		s.Clear()
		return
	}
	s.SetCells([]string{id})
}

// SetCells replaces the selection with the selectable cells in ids.
func (s *Model) SetCells(ids []string) {
	if s.single {
		ids = s.firstSelectable(ids)
	}
	s.changeSelection(s.selectable(ids, false), s.Cells())
}

// AddCell adds id to the selection.
func (s *Model) AddCell(id string) { s.AddCells([]string{id}) }

// AddCells adds the selectable, not yet selected cells in ids.
func (s *Model) AddCells(ids []string) {
	var remove []string
	if s.single {
		remove = s.Cells()
		ids = s.firstSelectable(ids)
	}
	s.changeSelection(s.selectable(ids, true), remove)
}

// RemoveCell removes id from the selection.
func (s *Model) RemoveCell(id string) { s.RemoveCells([]string{id}) }

// RemoveCells removes the selected cells in ids.
func (s *Model) RemoveCells(ids []string) {
	var remove []string
	for _, id := range ids {
		if s.IsSelected(id) && !slices.Contains(remove, id) {
			remove = append(remove, id)
		}
	}
	s.changeSelection(nil, remove)
}

// Clear deselects everything.
func (s *Model) Clear() { s.changeSelection(nil, s.Cells()) }

func (s *Model) selectable(ids []string, skipSelected bool) []string {
	var out []string
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		if skipSelected && s.IsSelected(id) {
			continue
		}
		if s.filter == nil || s.filter.IsCellSelectable(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Model) firstSelectable(ids []string) []string {
	for _, id := range ids {
		if id != "" && (s.filter == nil || s.filter.IsCellSelectable(id)) {
			return []string{id}
		}
	}
	return nil
}

// changeSelection executes a Change and publishes it as an insignificant
// edit. Nothing happens when both lists are empty.
func (s *Model) changeSelection(added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	ch := NewChange(s, added, removed)
	ch.Execute()
	edit := model.NewEdit(s.events, false)
	edit.Add(ch)
	s.events.Fire(event.Undo, model.EditEvent{Edit: edit})
}

func (s *Model) cellAdded(id string) {
	if !s.IsSelected(id) {
		s.cells = append(s.cells, id)
	}
}

func (s *Model) cellRemoved(id string) {
	if i := slices.Index(s.cells, id); i >= 0 {
		s.cells = slices.Delete(s.cells, i, i+1)
	}
}

// Change removes and adds cells to a selection. Executing it swaps Added
// and Removed, so the next execution reverts it.
type Change struct {
	Selection *Model
	Added     []string
	Removed   []string
}

// NewChange returns a change that adds added and removes removed.
func NewChange(s *Model, added, removed []string) *Change {
	return &Change{Selection: s, Added: slices.Clone(added), Removed: slices.Clone(removed)}
}

// Execute implements [model.Change].
func (c *Change) Execute() {
	for _, id := range c.Removed {
		c.Selection.cellRemoved(id)
	}
	for _, id := range c.Added {
		c.Selection.cellAdded(id)
	}
	ev := ChangeEvent{Added: slices.Clone(c.Added), Removed: slices.Clone(c.Removed)}
	c.Added, c.Removed = c.Removed, c.Added
	c.Selection.events.Fire(event.Change, ev)
}

// Refs implements the reference lookup used by undo managers.
func (c *Change) Refs() []string {
	return append(slices.Clone(c.Added), c.Removed...)
}
