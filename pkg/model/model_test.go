package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// fixture holds a model with vertices a, b and an edge e from a to b, all
// in the default layer.
type fixture struct {
	m       *Model
	layer   string
	a, b, e string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	m := New()
	f := fixture{m: m, layer: m.ChildAt(m.Root(), 0)}
	f.a = m.CreateVertex("A", geometry.New(20, 20, 80, 30), style.Style{})
	f.b = m.CreateVertex("B", geometry.New(200, 150, 80, 30), style.Style{})
	f.e = m.CreateEdge(nil, nil, style.Style{})
	m.Batch(func() {
		m.Add(f.layer, f.a, -1)
		m.Add(f.layer, f.b, -1)
		m.Add(f.layer, f.e, -1)
		m.SetTerminals(f.e, f.a, f.b)
	})
	return f
}

func geoString(g *geometry.Geometry) string {
	if g == nil {
		return "nil"
	}
	s := fmt.Sprintf("%v,%v,%v,%v,%v,%v", g.X, g.Y, g.Width, g.Height, g.Relative, g.Points)
	for _, p := range []*geometry.Point{g.SourcePoint, g.TargetPoint, g.Offset} {
		if p != nil {
			s += fmt.Sprintf(",%v", *p)
		} else {
			s += ",-"
		}
	}
	return s
}

// dump renders the full cell table so two model states can be compared.
func dump(m *Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "root=%s\n", m.root)
	for _, id := range slices.Sorted(maps.Keys(m.cells)) {
		c := m.cells[id]
		fmt.Fprintf(&b, "%s p=%s ch=%v s=%s t=%s e=%v v=%v g=%s st=%s vis=%v col=%v\n",
			id, c.Parent, c.Children, c.Source, c.Target, c.Edges, c.Value,
			geoString(c.Geometry), c.Style.String(), c.Visible, c.Collapsed)
	}
	return b.String()
}

// commits collects the edits a model commits.
func commits(m *Model) *[]*Edit {
	var edits []*Edit
	m.Events().AddListener(event.Undo, func(e *event.Event) {
		edits = append(edits, e.Payload.(EditEvent).Edit)
	})
	return &edits
}

func TestNewModel(t *testing.T) {
	m := New()
	if m.Root() != "0" {
		t.Errorf("Root = %q, want 0", m.Root())
	}
	if got := m.Children(m.Root()); !slices.Equal(got, []string{"1"}) {
		t.Errorf("root children = %v, want [1]", got)
	}
	if !m.IsLayer("1") {
		t.Error("default layer not reported as layer")
	}
	if !m.CurrentEdit().IsEmpty() {
		t.Error("initial tree must not be recorded")
	}
}

func TestChangeInvolution(t *testing.T) {
	tests := []struct {
		name string
		make func(f fixture) Change
	}{
		{"value", func(f fixture) Change { return NewValueChange(f.m, f.a, "changed") }},
		{"style", func(f fixture) Change { return NewStyleChange(f.m, f.a, style.MustParse("shape=ellipse")) }},
		{"geometry", func(f fixture) Change { return NewGeometryChange(f.m, f.a, geometry.New(5, 5, 5, 5)) }},
		{"collapse", func(f fixture) Change { return NewCollapseChange(f.m, f.a, true) }},
		{"visible", func(f fixture) Change { return NewVisibleChange(f.m, f.a, false) }},
		{"terminal reconnect", func(f fixture) Change { return NewTerminalChange(f.m, f.e, f.b, true) }},
		{"terminal disconnect", func(f fixture) Change { return NewTerminalChange(f.m, f.e, "", false) }},
		{"root", func(f fixture) Change {
			return NewRootChange(f.m, f.m.Register(cell.New(nil, nil, style.Style{})))
		}},
		{"child move", func(f fixture) Change { return NewChildChange(f.m, f.layer, f.b, 0) }},
		{"child remove vertex", func(f fixture) Change { return NewChildChange(f.m, "", f.a, 0) }},
		{"child remove edge", func(f fixture) Change { return NewChildChange(f.m, "", f.e, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ch := tt.make(f)
			before := dump(f.m)

			ch.Execute()
			if dump(f.m) == before {
				t.Fatal("first Execute had no effect")
			}
			ch.Execute()
			if got := dump(f.m); got != before {
				t.Errorf("Execute twice is not the identity:\nbefore:\n%s\nafter:\n%s", before, got)
			}
		})
	}
}

func TestBatchCommitsOneEdit(t *testing.T) {
	f := newFixture(t)
	m := f.m
	var notified []*Edit
	m.Events().AddListener(event.Change, func(e *event.Event) {
		notified = append(notified, e.Payload.(EditEvent).Edit)
	})

	m.Batch(func() {
		v := m.CreateVertex("V", geometry.New(0, 0, 10, 10), style.Style{})
		m.Add(f.layer, v, -1)
		m.Batch(func() {
			m.SetValue(v, "W")
			m.SetStyle(v, style.MustParse("rounded=1"))
		})
		if m.UpdateLevel() != 1 {
			t.Errorf("UpdateLevel = %d inside outer batch", m.UpdateLevel())
		}
		if len(notified) != 0 {
			t.Error("nested EndUpdate must not notify")
		}
	})

	if len(notified) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notified))
	}
	if n := notified[0].Len(); n != 3 {
		t.Errorf("edit has %d changes, want 3", n)
	}
	if m.UpdateLevel() != 0 {
		t.Errorf("UpdateLevel = %d after batch", m.UpdateLevel())
	}
}

func TestEditUndoRedo(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)
	before := dump(m)

	m.Batch(func() {
		m.SetGeometry(f.a, geometry.New(40, 40, 80, 30))
		m.SetGeometry(f.a, geometry.New(60, 60, 80, 30))
		m.SetValue(f.b, "B2")
	})
	after := dump(m)
	if len(*edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(*edits))
	}
	edit := (*edits)[0]

	edit.Undo()
	if got := m.Geometry(f.a); !got.Equal(geometry.New(20, 20, 80, 30)) {
		t.Errorf("geometry after undo = %s, want pre-batch geometry", geoString(got))
	}
	if dump(m) != before {
		t.Error("undo did not restore the pre-batch state")
	}
	edit.Undo()
	if dump(m) != before {
		t.Error("second undo must be a no-op")
	}

	edit.Redo()
	if dump(m) != after {
		t.Error("redo did not restore the post-batch state")
	}
	if len(*edits) != 1 {
		t.Error("undo and redo must not record new edits")
	}
}

func TestEditEventsOnUndo(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)
	m.SetValue(f.a, "x")

	var names []string
	m.Events().AddListener("", func(e *event.Event) { names = append(names, e.Name) })
	(*edits)[0].Undo()

	want := []string{event.StartEdit, event.Executed, event.EndEdit, event.Change, event.Notify}
	if !slices.Equal(names, want) {
		t.Errorf("events = %v, want %v", names, want)
	}
}

func TestSettersIgnoreEqualValues(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)

	m.SetValue(f.a, "A")
	m.SetStyle(f.a, style.Style{})
	m.SetGeometry(f.a, geometry.New(20, 20, 80, 30))
	m.SetVisible(f.a, true)
	m.SetCollapsed(f.a, false)
	m.SetTerminal(f.e, f.a, true)
	m.SetRoot(m.Root())

	if len(*edits) != 0 {
		t.Errorf("no-op setters committed %d edits", len(*edits))
	}
}

func TestSetGeometryStoresCopy(t *testing.T) {
	f := newFixture(t)
	g := geometry.New(1, 1, 1, 1)
	f.m.SetGeometry(f.a, g)
	g.X = 99
	if f.m.Geometry(f.a).X != 1 {
		t.Error("model shares geometry with caller")
	}
	got := f.m.Geometry(f.a)
	got.X = 50
	if f.m.Geometry(f.a).X != 1 {
		t.Error("Geometry must return a copy")
	}
}

func TestTreeConsistency(t *testing.T) {
	f := newFixture(t)
	m := f.m
	group := m.CreateCell(nil, geometry.New(0, 0, 300, 300), style.Style{})
	m.Add(f.layer, group, 0)
	m.Add(group, f.a, -1)
	m.Add(f.layer, f.b, 0)
	m.Add(f.layer, f.b, 99)
	m.Remove(group)

	for id, c := range m.cells {
		if c.Parent != "" {
			p := m.cells[c.Parent]
			if p == nil || p.ChildIndex(id) < 0 {
				t.Errorf("%s: parent %s does not list it", id, c.Parent)
			}
		}
		for _, child := range c.Children {
			if m.cells[child].Parent != id {
				t.Errorf("%s: child %s has parent %s", id, child, m.cells[child].Parent)
			}
		}
	}
	if got := m.Children(f.layer); !slices.Equal(got, []string{f.e, f.b}) {
		t.Errorf("layer children = %v, want [%s %s]", got, f.e, f.b)
	}
	if m.Contains(f.a) {
		t.Error("a should be detached with its group")
	}
	if m.Parent(f.a) != group {
		t.Error("descendants stay attached to the removed cell")
	}
}

func TestAddIgnoresCycles(t *testing.T) {
	m := New()
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateCell(nil, nil, style.Style{})
	m.Add(layer, g, -1)
	m.Add(g, layer, -1)
	m.Add(g, g, -1)
	if m.Parent(layer) != m.Root() || m.Parent(g) != layer {
		t.Error("cyclic add changed the tree")
	}
}

func TestRemoveDisconnectsEdges(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)
	before := dump(m)

	m.Remove(f.a)
	if m.Contains(f.a) {
		t.Fatal("a still reachable")
	}
	if src := m.Cell(f.e).Source; src != "" {
		t.Errorf("edge source = %q, want disconnected", src)
	}
	if m.Cell(f.a).EdgeIndex(f.e) >= 0 {
		t.Error("removed cell still lists the edge")
	}
	if m.Terminal(f.e, false) != f.b {
		t.Error("other end must stay connected")
	}

	(*edits)[len(*edits)-1].Undo()
	if got := dump(m); got != before {
		t.Errorf("undo of remove:\n%s\nwant:\n%s", got, before)
	}
}

func TestTerminalOfDetachedCell(t *testing.T) {
	f := newFixture(t)
	f.m.Execute(NewChildChange(f.m, "", f.a, 0))
	if got := f.m.Terminal(f.e, true); got != "" {
		t.Errorf("Terminal = %q, want empty for unreachable terminal", got)
	}
	if f.m.Cell(f.e).Source != f.a {
		t.Error("edge keeps the terminal ID")
	}
}

func TestEdgeQueries(t *testing.T) {
	f := newFixture(t)
	m := f.m
	loop := m.CreateEdge(nil, nil, style.Style{})
	back := m.CreateEdge(nil, nil, style.Style{})
	m.Batch(func() {
		m.Add(f.layer, loop, -1)
		m.SetTerminals(loop, f.a, f.a)
		m.Add(f.layer, back, -1)
		m.SetTerminals(back, f.b, f.a)
	})

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"outgoing a", m.OutgoingEdges(f.a), []string{f.e}},
		{"incoming a", m.IncomingEdges(f.a), []string{back}},
		{"all a", m.ConnectedEdges(f.a), []string{f.e, loop, back}},
		{"directed a->b", m.EdgesBetween(f.a, f.b, true), []string{f.e}},
		{"undirected a-b", m.EdgesBetween(f.a, f.b, false), []string{f.e, back}},
		{"opposites", m.Opposites(m.ConnectedEdges(f.a), f.a, true, true), []string{f.b, f.b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !slices.Equal(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMaintainEdgeParent(t *testing.T) {
	m := New()
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateCell(nil, geometry.New(100, 100, 200, 200), style.Style{})
	v1 := m.CreateVertex(nil, geometry.New(10, 10, 20, 20), style.Style{})
	v2 := m.CreateVertex(nil, geometry.New(100, 100, 20, 20), style.Style{})
	eg := &geometry.Geometry{Relative: true, Points: []geometry.Point{{X: 150, Y: 150}}}
	e := m.CreateEdge(nil, eg, style.Style{})

	m.Batch(func() {
		m.Add(layer, g, -1)
		m.Add(g, v1, -1)
		m.Add(g, v2, -1)
		m.Add(layer, e, -1)
		m.SetTerminals(e, v1, v2)
	})

	if m.Parent(e) != g {
		t.Fatalf("edge parent = %q, want group %q", m.Parent(e), g)
	}
	if got := m.Geometry(e).Points[0]; got != (geometry.Point{X: 50, Y: 50}) {
		t.Errorf("control point = %+v, want translated into group space", got)
	}
}

func TestIDs(t *testing.T) {
	m := New()
	if id := m.CreateVertex(nil, nil, style.Style{}); id != "2" {
		t.Errorf("first id = %q, want 2", id)
	}
	c := cell.NewVertex(nil, nil, style.Style{})
	c.ID = "10"
	m.Register(c)
	if id := m.CreateVertex(nil, nil, style.Style{}); id != "11" {
		t.Errorf("id after explicit 10 = %q, want 11", id)
	}
	dup := cell.NewVertex(nil, nil, style.Style{})
	dup.ID = "2"
	if id := m.Register(dup); id == "2" {
		t.Error("colliding id must be replaced")
	}

	pm := New(WithIDAffixes("c", "x"))
	if pm.Root() != "c0x" {
		t.Errorf("prefixed root = %q", pm.Root())
	}

	um := New(WithIDGenerator(UUIDGenerator{}))
	if len(um.Root()) != 36 {
		t.Errorf("uuid root = %q", um.Root())
	}
}

func TestCloneCells(t *testing.T) {
	f := newFixture(t)
	m := f.m

	clones := m.CloneCells([]string{f.a, f.b, f.e}, true)
	a2, b2, e2 := clones[0], clones[1], clones[2]
	if m.Cell(e2).Source != a2 || m.Cell(e2).Target != b2 {
		t.Errorf("clone edge terminals = %q, %q", m.Cell(e2).Source, m.Cell(e2).Target)
	}
	if m.Cell(a2).EdgeIndex(e2) < 0 {
		t.Error("cloned terminal must list the cloned edge")
	}
	if m.Contains(a2) {
		t.Error("clones are detached")
	}

	partial := m.CloneCells([]string{f.e, f.a}, false)
	ec := m.Cell(partial[0])
	if ec.Source != partial[1] || ec.Target != "" {
		t.Errorf("partial clone terminals = %q, %q; external link must be dropped", ec.Source, ec.Target)
	}
}

func TestCloneIncludesChildren(t *testing.T) {
	m := New()
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateCell("G", nil, style.Style{})
	v := m.CreateVertex("V", nil, style.Style{})
	m.Add(layer, g, -1)
	m.Add(g, v, -1)

	g2 := m.CloneCells([]string{g}, true)[0]
	kids := m.Children(g2)
	if len(kids) != 1 || kids[0] == v || m.Value(kids[0]) != "V" {
		t.Errorf("cloned children = %v", kids)
	}
	if m.Parent(kids[0]) != g2 {
		t.Error("cloned child parent mismatch")
	}
}

func TestListenerChangesBecomeFollowUpEdit(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)
	m.Events().AddListener(event.Change, func(e *event.Event) {
		for _, ch := range e.Payload.(EditEvent).Edit.Changes() {
			if vc, ok := ch.(*ValueChange); ok && vc.Cell == f.a && vc.Value == "trigger" {
				m.SetValue(f.b, "reacted")
			}
		}
	})

	m.SetValue(f.a, "trigger")

	if len(*edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(*edits))
	}
	if m.Value(f.b) != "reacted" {
		t.Error("listener change not applied")
	}
	if !m.CurrentEdit().IsEmpty() {
		t.Error("follow-up change left in the open edit")
	}
	if m.UpdateLevel() != 0 {
		t.Errorf("UpdateLevel = %d", m.UpdateLevel())
	}
}

func TestListenerChangesPastFlushLimit(t *testing.T) {
	f := newFixture(t)
	m := f.m
	edits := commits(m)
	react, n := true, 0
	m.Events().AddListener(event.Change, func(*event.Event) {
		if react {
			n++
			m.SetValue(f.b, n)
		}
	})

	m.SetValue(f.a, "trigger")
	react = false

	if len(*edits) != maxFlushes {
		t.Errorf("edits = %d, want %d", len(*edits), maxFlushes)
	}
	if got := m.CurrentEdit().Len(); got != 1 {
		t.Fatalf("open edit holds %d changes, want the last listener change", got)
	}

	m.SetValue(f.a, "next")
	last := (*edits)[len(*edits)-1]
	if last.Len() != 2 {
		t.Errorf("next edit has %d changes, want the leftover plus its own", last.Len())
	}
}

func TestCompact(t *testing.T) {
	f := newFixture(t)
	m := f.m
	orphan := m.CreateVertex(nil, nil, style.Style{})
	m.Remove(f.b)

	n := m.Compact(func(id string) bool { return id == f.b })
	if n != 1 || m.Cell(orphan) != nil {
		t.Errorf("Compact removed %d cells, orphan present: %v", n, m.Cell(orphan) != nil)
	}
	if m.Cell(f.b) == nil {
		t.Error("retained cell was dropped")
	}

	m.Remove(f.a)
	m.Compact(nil)
	if m.Cell(f.a) != nil {
		t.Error("unretained detached cell kept")
	}
	if m.Cell(f.e) == nil {
		t.Error("attached edge dropped")
	}
}

func TestCompactDetachedSubtree(t *testing.T) {
	m := New()
	layer := m.ChildAt(m.Root(), 0)
	group := m.CreateCell(nil, nil, style.Style{})
	v := m.CreateVertex("v", nil, style.Style{})
	m.Batch(func() {
		m.Add(layer, group, -1)
		m.Add(group, v, -1)
	})
	m.Remove(group)

	if n := m.Compact(func(id string) bool { return id == v }); n != 1 {
		t.Errorf("first Compact removed %d cells, want 1", n)
	}
	if m.Cell(group) != nil {
		t.Error("unretained group kept")
	}
	if got := m.Parent(v); got != "" {
		t.Errorf("Parent(v) = %q, want detached", got)
	}

	if n := m.Compact(nil); n != 1 {
		t.Errorf("second Compact removed %d cells, want 1", n)
	}
	if m.Cell(v) != nil {
		t.Error("unretained vertex kept")
	}
}

func TestMergeChildren(t *testing.T) {
	src := newFixture(t)
	dst := New()
	layer := dst.ChildAt(dst.Root(), 0)
	edits := commits(dst)

	dst.MergeChildren(src.m, src.layer, layer, true)

	if got := dst.Children(layer); !slices.Equal(got, []string{src.a, src.b, src.e}) {
		t.Errorf("merged children = %v", got)
	}
	if dst.Terminal(src.e, true) != src.a || dst.Terminal(src.e, false) != src.b {
		t.Error("merged edge not reconnected")
	}
	if len(*edits) != 1 {
		t.Errorf("merge committed %d edits, want 1", len(*edits))
	}
	if !dst.MaintainEdgeParent() {
		t.Error("edge parent maintenance not restored")
	}
}

func TestClearIsUndoable(t *testing.T) {
	f := newFixture(t)
	edits := commits(f.m)
	oldRoot := f.m.Root()
	f.m.Clear()
	if f.m.Root() == oldRoot || f.m.Contains(f.a) {
		t.Fatal("Clear kept the old tree")
	}
	if f.m.ChildCount(f.m.Root()) != 1 {
		t.Error("new root needs one layer")
	}
	(*edits)[0].Undo()
	if f.m.Root() != oldRoot || !f.m.Contains(f.a) {
		t.Error("undo of Clear did not restore the tree")
	}
}

func TestOriginAndAncestors(t *testing.T) {
	m := New()
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateCell(nil, geometry.New(10, 20, 100, 100), style.Style{})
	v := m.CreateVertex(nil, geometry.New(5, 5, 10, 10), style.Style{})
	w := m.CreateVertex(nil, geometry.New(0, 0, 10, 10), style.Style{})
	m.Add(layer, g, -1)
	m.Add(g, v, -1)
	m.Add(layer, w, -1)

	if got := m.Origin(v); got != (geometry.Point{X: 15, Y: 25}) {
		t.Errorf("Origin = %+v", got)
	}
	if got := m.NearestCommonAncestor(v, w); got != layer {
		t.Errorf("NearestCommonAncestor = %q, want layer", got)
	}
	if got := m.TopmostCells([]string{v, g, w}); !slices.Equal(got, []string{g, w}) {
		t.Errorf("TopmostCells = %v", got)
	}
	if got := m.Descendants(g); !slices.Equal(got, []string{g, v}) {
		t.Errorf("Descendants = %v", got)
	}
}

func TestRestoreFromSnapshot(t *testing.T) {
	f := newFixture(t)
	r := Restore(f.m.Snapshot())
	if got, want := dump(r), dump(f.m); got != want {
		t.Fatalf("restored model differs:\n%s\nwant:\n%s", got, want)
	}
	if id := r.CreateVertex(nil, nil, style.Style{}); r.Cell(id) == nil || slices.Contains([]string{f.a, f.b, f.e, f.layer, f.m.Root()}, id) {
		t.Errorf("new id %q collides with a restored cell", id)
	}

	dangling := []*cell.Cell{{ID: "r"}, {ID: "x", Parent: "r", Edge: true, Source: "missing"}}
	r = Restore(dangling)
	if r.Terminal("x", true) != "" {
		t.Error("unknown terminal kept")
	}
	if r.Parent("x") != "r" || r.ChildCount("r") != 1 {
		t.Error("child not linked to its parent")
	}
}
