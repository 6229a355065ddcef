package model

import "github.com/matzehuels/cellgraph/pkg/event"

// maxFlushes bounds how many follow-up edits one outermost EndUpdate
// commits for changes made by its own listeners. Changes made after the
// last flush stay in the current edit and are committed with the next
// outermost EndUpdate.
const maxFlushes = 16

// Execute applies ch and records it in the current edit. It runs inside
// an implicit BeginUpdate/EndUpdate pair, so a change executed outside any
// update is committed as its own edit.
func (m *Model) Execute(ch Change) {
	ch.Execute()
	m.BeginUpdate()
	m.currentEdit.Add(ch)
	m.events.Fire(event.Execute, ExecuteEvent{Change: ch})
	m.events.Fire(event.Executed, ExecuteEvent{Change: ch})
	m.EndUpdate()
}

// BeginUpdate opens or nests an update. Changes executed until the
// matching outermost [Model.EndUpdate] form one edit.
func (m *Model) BeginUpdate() {
	m.updateLevel++
	m.events.Fire(event.BeginUpdate, nil)
	if m.updateLevel == 1 {
		m.events.Fire(event.StartEdit, nil)
	}
}

// EndUpdate closes an update. Closing the outermost update commits the
// current edit if it is not empty: BeforeUndo is fired, a fresh edit is
// opened, Change and Notify are fired with the committed edit and finally
// Undo, which undo managers listen to.
//
// Listeners may open and close nested updates while the commit runs.
// Changes they make are committed as a follow-up edit once the first one
// is done, up to [maxFlushes] follow-ups; a listener that keeps changing
// the model past that leaves its last changes in [Model.CurrentEdit],
// where they merge into the caller's next edit. Every BeginUpdate must be matched by exactly one EndUpdate; an
// unbalanced pair leaves later changes in the wrong edit and cannot be
// detected by the model.
func (m *Model) EndUpdate() {
	m.updateLevel--
	if m.updateLevel == 0 {
		m.events.Fire(event.EndEdit, nil)
	}
	if m.endingUpdate {
		return
	}

	m.endingUpdate = m.updateLevel == 0
	defer func() { m.endingUpdate = false }()

	m.events.Fire(event.EndUpdate, EditEvent{Edit: m.currentEdit})
	for i := 0; m.endingUpdate && !m.currentEdit.IsEmpty() && i < maxFlushes; i++ {
		m.events.Fire(event.BeforeUndo, EditEvent{Edit: m.currentEdit})
		edit := m.currentEdit
		m.currentEdit = m.createEdit()
		edit.Notify()
		m.events.Fire(event.Undo, EditEvent{Edit: edit})
	}
}

// Batch runs fn inside one update.
func (m *Model) Batch(fn func()) {
	m.BeginUpdate()
	defer m.EndUpdate()
	fn()
}

// UpdateLevel returns the update nesting depth.
func (m *Model) UpdateLevel() int { return m.updateLevel }

// CurrentEdit returns the edit collecting changes of the open update.
func (m *Model) CurrentEdit() *Edit { return m.currentEdit }

// createEdit returns an edit that fires Change and Notify on the model
// when notified.
func (m *Model) createEdit() *Edit {
	edit := NewEdit(m.events, true)
	edit.SetNotify(func(e *Edit) {
		m.events.Fire(event.Change, EditEvent{Edit: e})
		m.events.Fire(event.Notify, EditEvent{Edit: e})
	})
	return edit
}
