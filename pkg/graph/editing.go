package graph

import (
	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Styler resolves the effective style of a cell.
type Styler interface {
	CellStyle(id string) style.Style
}

// Editor tracks in-place label editing. At most one cell is edited at a
// time.
type Editor struct {
	model   *model.Model
	styles  Styler
	events  *event.Source
	editing string
}

// NewEditor returns an editor changing values in m and firing its events
// on events.
func NewEditor(m *model.Model, styles Styler, events *event.Source) *Editor {
	return &Editor{model: m, styles: styles, events: events}
}

// IsCellEditable reports whether id is displayed text that may be edited.
func (e *Editor) IsCellEditable(id string) bool {
	return e.model.Cell(id) != nil && e.styles.CellStyle(id).Flag(style.KeyEditable, true)
}

// EditingCell returns the cell being edited, or "".
func (e *Editor) EditingCell() string { return e.editing }

// IsEditing reports whether a cell is being edited.
func (e *Editor) IsEditing() bool { return e.editing != "" }

// StartEditing begins editing id, stopping any running edit without
// applying it. It reports whether editing started.
func (e *Editor) StartEditing(id string) bool {
	if !e.IsCellEditable(id) {
		return false
	}
	if e.editing != "" {
		e.StopEditing(nil, true)
	}
	e.editing = id
	e.events.Fire(event.EditingStarted, EditingEvent{Cell: id})
	return true
}

// StopEditing ends the running edit. Unless cancel is set the edited cell
// gets value as its new label.
func (e *Editor) StopEditing(value any, cancel bool) {
	id := e.editing
	if id == "" {
		return
	}
	e.editing = ""
	if !cancel && e.model.Cell(id) != nil {
		e.LabelChanged(id, value)
	}
	e.events.Fire(event.EditingStopped, EditingEvent{Cell: id, Cancel: cancel})
}

// LabelChanged sets the value of id in one undoable edit and fires
// LabelChanged.
func (e *Editor) LabelChanged(id string, value any) {
	previous := e.model.Value(id)
	e.model.Batch(func() {
		e.model.SetValue(id, value)
		e.events.Fire(event.LabelChanged, LabelEvent{Cell: id, Value: value, Previous: previous})
	})
}
