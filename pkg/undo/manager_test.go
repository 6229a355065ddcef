package undo

import (
	"slices"
	"testing"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func setup(t *testing.T, size int) (*Manager, *model.Model, string) {
	t.Helper()
	m := model.New()
	layer := m.ChildAt(m.Root(), 0)
	v := m.CreateVertex(0, nil, style.Style{})
	m.Add(layer, v, -1)
	um := New(size)
	um.Attach(m.Events())
	return um, m, v
}

func TestUndoRedo(t *testing.T) {
	um, m, v := setup(t, 0)
	for i := 1; i <= 3; i++ {
		m.SetValue(v, i)
	}
	if len(um.History()) != 3 || !um.CanUndo() || um.CanRedo() {
		t.Fatalf("history = %d, undo %v, redo %v", len(um.History()), um.CanUndo(), um.CanRedo())
	}

	um.Undo()
	um.Undo()
	if got := m.Value(v); got != 1 {
		t.Errorf("value after two undos = %v, want 1", got)
	}
	um.Redo()
	if got := m.Value(v); got != 2 {
		t.Errorf("value after redo = %v, want 2", got)
	}
	if um.Index() != 2 {
		t.Errorf("Index = %d, want 2", um.Index())
	}
}

func TestNewEditTrimsRedo(t *testing.T) {
	um, m, v := setup(t, 0)
	edits := make(map[*model.Edit]bool)
	um.Events().AddListener(event.Add, func(e *event.Event) {
		edits[e.Payload.(model.EditEvent).Edit] = true
	})
	m.SetValue(v, 1)
	m.SetValue(v, 2)
	dropped := um.History()[1]

	um.Undo()
	m.SetValue(v, 3)

	if um.CanRedo() {
		t.Error("redo must be gone after a new edit")
	}
	if len(um.History()) != 2 {
		t.Errorf("history = %d, want 2", len(um.History()))
	}
	if !dropped.IsDead() {
		t.Error("trimmed edit did not die")
	}
	if len(edits) != 3 {
		t.Errorf("Add events = %d, want 3", len(edits))
	}
}

func TestSizeLimit(t *testing.T) {
	um, m, v := setup(t, 2)
	m.SetValue(v, 1)
	first := um.History()[0]
	m.SetValue(v, 2)
	m.SetValue(v, 3)

	if len(um.History()) != 2 {
		t.Fatalf("history = %d, want 2", len(um.History()))
	}
	if !first.IsDead() {
		t.Error("evicted edit did not die")
	}
	um.Undo()
	um.Undo()
	um.Undo()
	if got := m.Value(v); got != 1 {
		t.Errorf("value = %v, want 1 (oldest edit evicted)", got)
	}
}

func TestInsignificantEditsAreSkipped(t *testing.T) {
	um, m, v := setup(t, 0)
	src := event.NewSource(nil)
	um.Attach(src)

	m.SetValue(v, 1)
	noise := model.NewEdit(src, false)
	noise.Add(model.NewValueChange(m, v, "noise"))
	src.Fire(event.Undo, model.EditEvent{Edit: noise})

	var undone []*model.Edit
	um.Events().AddListener(event.Undo, func(e *event.Event) {
		undone = append(undone, e.Payload.(model.EditEvent).Edit)
	})

	um.Undo()
	if len(undone) != 1 || !undone[0].IsSignificant() {
		t.Fatalf("undo events = %d", len(undone))
	}
	if um.Index() != 0 {
		t.Errorf("Index = %d, want 0", um.Index())
	}
	if got := m.Value(v); got != 0 {
		t.Errorf("value = %v, want 0", got)
	}
}

func TestClearAndReferences(t *testing.T) {
	um, m, v := setup(t, 0)
	m.SetValue(v, 1)
	if !um.References(v) {
		t.Error("References should find the changed cell")
	}
	if um.References("missing") {
		t.Error("References found an unknown cell")
	}

	cleared := false
	um.Events().AddListener(event.Clear, func(*event.Event) { cleared = true })
	um.Clear()
	if !um.IsEmpty() || um.CanUndo() || !cleared {
		t.Error("Clear left history behind")
	}
}

func TestUndoRestoresAcrossBatches(t *testing.T) {
	um, m, v := setup(t, 0)
	layer := m.Parent(v)
	w := m.CreateVertex("w", nil, style.Style{})
	m.Batch(func() {
		m.Add(layer, w, -1)
		m.SetValue(v, "batched")
	})
	um.Undo()
	if m.Contains(w) || m.Value(v) != 0 {
		t.Error("one undo must revert the whole batch")
	}
	if got := m.Children(layer); !slices.Equal(got, []string{v}) {
		t.Errorf("layer children = %v", got)
	}
}
