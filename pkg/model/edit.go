package model

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/event"
)

// Edit is an ordered list of changes that undo and redo as one step.
//
// An edit fires its events on the source it was created for: StartEdit,
// one Executed per change, EndEdit, followed by whatever the notify hook
// fires (a model fires Change and Notify).
type Edit struct {
	source      *event.Source
	changes     []Change
	significant bool
	undone      bool
	redone      bool
	dead        bool

	notify func(*Edit)
	die    func(*Edit)
}

// NewEdit returns an empty edit that fires its events on source.
// Insignificant edits are skipped over by undo managers.
func NewEdit(source *event.Source, significant bool) *Edit {
	return &Edit{source: source, significant: significant}
}

// Add appends a change.
func (e *Edit) Add(ch Change) { e.changes = append(e.changes, ch) }

// Changes returns the changes in execution order.
func (e *Edit) Changes() []Change { return slices.Clone(e.changes) }

// Len returns the number of changes.
func (e *Edit) Len() int { return len(e.changes) }

// IsEmpty reports whether the edit holds no changes.
func (e *Edit) IsEmpty() bool { return len(e.changes) == 0 }

// IsSignificant reports whether the edit counts as an undo step.
func (e *Edit) IsSignificant() bool { return e.significant }

// IsUndone reports whether the last operation on the edit was an undo.
func (e *Edit) IsUndone() bool { return e.undone }

// IsRedone reports whether the last operation on the edit was a redo.
func (e *Edit) IsRedone() bool { return e.redone }

// Source returns the event source the edit fires on.
func (e *Edit) Source() *event.Source { return e.source }

// SetNotify sets the hook run after undo, redo and the initial commit.
func (e *Edit) SetNotify(fn func(*Edit)) { e.notify = fn }

// SetDie sets the hook run when the edit is discarded.
func (e *Edit) SetDie(fn func(*Edit)) { e.die = fn }

// Notify runs the notify hook.
func (e *Edit) Notify() {
	if e.notify != nil {
		e.notify(e)
	}
}

// Die marks the edit as discarded. Undo managers call it when the edit
// drops out of their history.
func (e *Edit) Die() {
	if e.dead {
		return
	}
	e.dead = true
	if e.die != nil {
		e.die(e)
	}
}

// IsDead reports whether Die was called.
func (e *Edit) IsDead() bool { return e.dead }

// Undo executes the changes in reverse order. An edit that is already
// undone only notifies.
func (e *Edit) Undo() {
	if !e.undone {
		e.fire(event.StartEdit, nil)
		for i := len(e.changes) - 1; i >= 0; i-- {
			e.changes[i].Execute()
			e.fire(event.Executed, ExecuteEvent{Change: e.changes[i]})
		}
		e.undone = true
		e.redone = false
		e.fire(event.EndEdit, nil)
	}
	e.Notify()
}

// Redo executes the changes in order. An edit that is not undone only
// notifies.
func (e *Edit) Redo() {
	if e.undone {
		e.fire(event.StartEdit, nil)
		for _, ch := range e.changes {
			ch.Execute()
			e.fire(event.Executed, ExecuteEvent{Change: ch})
		}
		e.undone = false
		e.redone = true
		e.fire(event.EndEdit, nil)
	}
	e.Notify()
}

func (e *Edit) fire(name string, payload any) {
	if e.source != nil {
		e.source.Fire(name, payload)
	}
}
