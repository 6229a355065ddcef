package undo

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
)

// DefaultSize is the history length used by [New] for a zero size.
const DefaultSize = 100

// Manager keeps a linear history of edits with a cursor between the undone
// and the redoable part.
//
// Undo and Redo step over insignificant edits (such as selection changes)
// until a significant one has been processed, so a single call always moves
// by one meaningful step. Adding an edit drops everything after the cursor.
//
// Manager is not safe for concurrent use.
type Manager struct {
	size    int
	history []*model.Edit
	next    int // index of the next add

	events *event.Source
}

// New returns a manager holding at most size edits. Zero selects
// [DefaultSize]; a negative size means unbounded.
func New(size int) *Manager {
	if size == 0 {
		size = DefaultSize
	}
	um := &Manager{size: size}
	um.events = event.NewSource(um)
	return um
}

// Events returns the event source. Add, Undo, Redo carry a
// [model.EditEvent]; Clear carries nil.
func (um *Manager) Events() *event.Source { return um.events }

// Attach makes the manager record every edit that source publishes with an
// Undo event. Models, views and selection models publish this way.
func (um *Manager) Attach(source *event.Source) event.Subscription {
	return source.AddListener(event.Undo, func(e *event.Event) {
		if ev, ok := e.Payload.(model.EditEvent); ok && ev.Edit != nil {
			um.UndoableEditHappened(ev.Edit)
		}
	})
}

// Size returns the history limit; negative means unbounded.
func (um *Manager) Size() int { return um.size }

// History returns the recorded edits, oldest first.
func (um *Manager) History() []*model.Edit { return slices.Clone(um.history) }

// Index returns the number of edits before the cursor.
func (um *Manager) Index() int { return um.next }

// IsEmpty reports whether the history holds no edits.
func (um *Manager) IsEmpty() bool { return len(um.history) == 0 }

// CanUndo reports whether there is an edit before the cursor.
func (um *Manager) CanUndo() bool { return um.next > 0 }

// CanRedo reports whether there is an edit after the cursor.
func (um *Manager) CanRedo() bool { return um.next < len(um.history) }

// Clear drops the whole history.
func (um *Manager) Clear() {
	for _, e := range um.history {
		e.Die()
	}
	um.history = nil
	um.next = 0
	um.events.Fire(event.Clear, nil)
}

// Undo undoes edits before the cursor until a significant one is undone.
func (um *Manager) Undo() {
	for um.next > 0 {
		um.next--
		edit := um.history[um.next]
		edit.Undo()
		if edit.IsSignificant() {
			um.events.Fire(event.Undo, model.EditEvent{Edit: edit})
			return
		}
	}
}

// Redo redoes edits after the cursor until a significant one is redone.
func (um *Manager) Redo() {
	for um.next < len(um.history) {
		edit := um.history[um.next]
		um.next++
		edit.Redo()
		if edit.IsSignificant() {
			um.events.Fire(event.Redo, model.EditEvent{Edit: edit})
			return
		}
	}
}

// UndoableEditHappened records edit at the cursor. Redoable edits are
// discarded first; when the history is full the oldest edit is dropped.
func (um *Manager) UndoableEditHappened(edit *model.Edit) {
	um.Trim()
	if um.size > 0 && len(um.history) >= um.size {
		um.history[0].Die()
		um.history = slices.Delete(um.history, 0, 1)
	}
	um.history = append(um.history, edit)
	um.next = len(um.history)
	um.events.Fire(event.Add, model.EditEvent{Edit: edit})
}

// Trim discards the edits after the cursor and calls Die on each.
func (um *Manager) Trim() {
	if len(um.history) <= um.next {
		return
	}
	for _, e := range um.history[um.next:] {
		e.Die()
	}
	um.history = um.history[:um.next]
}

// References reports whether any recorded change refers to the cell id.
// Pass it to [model.Model.Compact] to keep cells that undo or redo may
// bring back.
func (um *Manager) References(id string) bool {
	for _, edit := range um.history {
		for _, ch := range edit.Changes() {
			if slices.Contains(model.Refs(ch), id) {
				return true
			}
		}
	}
	return false
}
