// Package undo implements an undo manager over [model.Edit] values.
//
// A [Manager] is attached to any event source that publishes committed
// edits with an Undo event:
//
//	um := undo.New(0)
//	um.Attach(m.Events())
//	m.SetValue(id, "x")
//	um.Undo()
//
// The manager does not know what an edit changes. Undoing replays the
// edit's changes in reverse; the model, the view and the selection react to
// the resulting Change notifications like they do to any other change.
package undo
