package view

import (
	"math"
	"testing"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

const eps = 1e-2

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearPoint(p geometry.Point, x, y float64) bool { return near(p.X, x) && near(p.Y, y) }

type scenario struct {
	m       *model.Model
	v       *View
	layer   string
	a, b, e string
}

// newScenario builds A(20,20,80,30) and B(200,150,80,30) connected by E and
// validates the view.
func newScenario(t *testing.T) scenario {
	t.Helper()
	m := model.New()
	s := scenario{m: m, v: New(m, nil), layer: m.ChildAt(m.Root(), 0)}
	s.a = m.CreateVertex("A", geometry.New(20, 20, 80, 30), style.Style{})
	s.b = m.CreateVertex("B", geometry.New(200, 150, 80, 30), style.Style{})
	s.e = m.CreateEdge("E", nil, style.Style{})
	m.Batch(func() {
		m.Add(s.layer, s.a, -1)
		m.Add(s.layer, s.b, -1)
		m.Add(s.layer, s.e, -1)
		m.SetTerminals(s.e, s.a, s.b)
	})
	s.v.Validate("")
	return s
}

func TestVertexStates(t *testing.T) {
	s := newScenario(t)
	tests := []struct {
		id   string
		want geometry.Rectangle
	}{
		{s.a, geometry.Rectangle{X: 20, Y: 20, Width: 80, Height: 30}},
		{s.b, geometry.Rectangle{X: 200, Y: 150, Width: 80, Height: 30}},
	}
	for _, tt := range tests {
		st := s.v.State(tt.id)
		if st == nil {
			t.Fatalf("no state for %s", tt.id)
		}
		if st.Bounds() != tt.want {
			t.Errorf("%s bounds = %+v, want %+v", tt.id, st.Bounds(), tt.want)
		}
		if st.Invalid {
			t.Errorf("%s still invalid after validation", tt.id)
		}
		if st.Style.Shape != "rectangle" {
			t.Errorf("%s shape = %q, want resolved default", tt.id, st.Style.Shape)
		}
	}
}

func TestEdgeEndsOnPerimeters(t *testing.T) {
	s := newScenario(t)
	st := s.v.State(s.e)
	if st == nil {
		t.Fatal("edge has no state")
	}
	if len(st.AbsolutePoints) != 2 {
		t.Fatalf("points = %v, want 2", st.AbsolutePoints)
	}
	src, trg := st.AbsolutePoints[0], st.AbsolutePoints[1]
	if !nearPoint(src, 80.77, 50) {
		t.Errorf("source point = %+v, want A's bottom border near (80.77, 50)", src)
	}
	if !nearPoint(trg, 219.23, 150) {
		t.Errorf("target point = %+v, want B's top border near (219.23, 150)", trg)
	}
	if st.VisibleSource != s.a || st.VisibleTarget != s.b {
		t.Errorf("visible terminals = %q, %q", st.VisibleSource, st.VisibleTarget)
	}
	if !near(st.Length, src.Distance(trg)) || len(st.Segments) != 1 {
		t.Errorf("length = %v, segments = %v", st.Length, st.Segments)
	}
	if !near(st.X, 80.77) || !near(st.Y, 50) || !near(st.Width, 138.46) || !near(st.Height, 100) {
		t.Errorf("edge bounds = %+v", st.Bounds())
	}
}

func TestGraphBounds(t *testing.T) {
	s := newScenario(t)
	got := s.v.GraphBounds()
	want := geometry.Rectangle{X: 20, Y: 20, Width: 260, Height: 160}
	if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Width, want.Width) || !near(got.Height, want.Height) {
		t.Errorf("GraphBounds = %+v, want %+v", got, want)
	}

	empty := New(model.New(), nil)
	empty.ScaleAndTranslate(2, 10, 5)
	if got := empty.GraphBounds(); got != (geometry.Rectangle{X: 20, Y: 10}) {
		t.Errorf("empty GraphBounds = %+v, want (20,10,0,0)", got)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	s := newScenario(t)
	first := s.v.Stats()
	if first.Recomputed != 5 || first.Created != 5 {
		t.Fatalf("first validation: %+v, want 5 recomputed and created", first)
	}

	s.v.Validate("")
	if got := s.v.Stats().Recomputed; got != first.Recomputed {
		t.Errorf("revalidating recomputed %d states", got-first.Recomputed)
	}

	geo := s.m.Geometry(s.a)
	geo.Translate(0, 100)
	s.m.SetGeometry(s.a, geo)
	s.v.Invalidate(s.a, true, true)
	s.v.Validate("")
	if got := s.v.Stats().Recomputed - first.Recomputed; got != 2 {
		t.Errorf("moving A recomputed %d states, want 2 (A and E)", got)
	}
	if st := s.v.State(s.a); st.Y != 120 {
		t.Errorf("A.Y = %v, want 120", st.Y)
	}
}

func TestStatesStayInvalidUntilValidate(t *testing.T) {
	s := newScenario(t)
	geo := s.m.Geometry(s.a)
	geo.Translate(0, 100)
	s.m.SetGeometry(s.a, geo)
	s.v.Invalidate(s.a, true, true)

	for _, id := range []string{s.a, s.e} {
		if st := s.v.State(id); st == nil || !st.Invalid {
			t.Errorf("state of %s is valid after the mutation", id)
		}
	}
	if st := s.v.State(s.b); st.Invalid {
		t.Error("unrelated state B was invalidated")
	}
	if st := s.v.State(s.a); st.Y != 20 {
		t.Errorf("A.Y = %v before Validate, want the stale 20", st.Y)
	}

	s.v.Validate("")
	for _, id := range []string{s.a, s.b, s.e} {
		if s.v.State(id).Invalid {
			t.Errorf("state of %s still invalid after Validate", id)
		}
	}
	if st := s.v.State(s.a); st.Y != 120 {
		t.Errorf("A.Y = %v after Validate, want 120", st.Y)
	}
	if p := s.v.State(s.e).AbsolutePoints[0]; p.Y < 120 || p.Y > 150 {
		t.Errorf("E source point = %+v, want on the moved A", p)
	}
}

func TestStateRequiresReachability(t *testing.T) {
	s := newScenario(t)
	s.m.Remove(s.b)
	if s.v.State(s.b) != nil {
		t.Error("State returned a state for a removed cell")
	}
	if got := s.v.States([]string{s.a, s.b, "missing"}); len(got) != 1 || got[0].Cell != s.a {
		t.Errorf("States = %v", got)
	}
}

func TestDanglingEdges(t *testing.T) {
	s := newScenario(t)
	loose := s.m.CreateEdge(nil, nil, style.Style{})
	pinned := s.m.CreateEdge(nil, nil, style.Style{})
	geo := &geometry.Geometry{Relative: true, TargetPoint: &geometry.Point{X: 300, Y: 300}}
	s.m.Batch(func() {
		s.m.Add(s.layer, loose, -1)
		s.m.Add(s.layer, pinned, -1)
		s.m.SetTerminal(pinned, s.a, true)
		s.m.SetGeometry(pinned, geo)
	})
	s.v.Invalidate("", true, true)
	s.v.Validate("")

	if s.v.State(loose) != nil {
		t.Error("edge without terminals or points must have no state")
	}
	st := s.v.State(pinned)
	if st == nil {
		t.Fatal("edge with a target point has no state")
	}
	pts := st.AbsolutePoints
	if !nearPoint(pts[len(pts)-1], 300, 300) {
		t.Errorf("target = %+v, want (300,300)", pts[len(pts)-1])
	}
	if !near(pts[0].Y, 50) {
		t.Errorf("source = %+v, want A's bottom border", pts[0])
	}
}

func TestControlPoints(t *testing.T) {
	s := newScenario(t)
	geo := s.m.Geometry(s.e)
	geo.Points = []geometry.Point{{X: 60, Y: 165}}
	s.m.SetGeometry(s.e, geo)
	s.v.SetTranslate(10, 0)

	pts := s.v.State(s.e).AbsolutePoints
	if len(pts) != 3 {
		t.Fatalf("points = %v, want 3", pts)
	}
	if !nearPoint(pts[1], 70, 165) {
		t.Errorf("control point = %+v, want (70,165)", pts[1])
	}
	if !nearPoint(pts[0], 70, 50) {
		t.Errorf("source = %+v, want straight down from A at (70,50)", pts[0])
	}
	if !nearPoint(pts[2], 210, 165) {
		t.Errorf("target = %+v, want B's left border at (210,165)", pts[2])
	}
}

func TestCollapsedAndHiddenCells(t *testing.T) {
	m := model.New()
	v := New(m, nil)
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateVertex("group", geometry.New(10, 10, 300, 200), style.Style{})
	c := m.CreateVertex("child", geometry.New(5, 5, 20, 20), style.Style{})
	x := m.CreateVertex("x", geometry.New(400, 10, 20, 20), style.Style{})
	e := m.CreateEdge(nil, nil, style.Style{})
	m.Batch(func() {
		m.Add(layer, g, -1)
		m.Add(g, c, -1)
		m.Add(layer, x, -1)
		m.Add(layer, e, -1)
		m.SetTerminals(e, x, c)
	})
	v.Validate("")

	if st := v.State(c); st == nil || st.X != 15 || st.Y != 15 {
		t.Fatalf("child state = %+v, want origin of group plus offset", st)
	}
	if got := v.State(e).VisibleTarget; got != c {
		t.Errorf("visible target = %q, want %q", got, c)
	}

	m.SetCollapsed(g, true)
	v.Invalidate(g, true, true)
	v.Validate("")
	if v.State(c) != nil {
		t.Error("child of a collapsed group keeps its state")
	}
	if got := v.State(e).VisibleTarget; got != g {
		t.Errorf("visible target = %q, want collapsed group %q", got, g)
	}

	m.SetVisible(x, false)
	v.Invalidate(x, true, true)
	v.Validate("")
	if v.State(x) != nil {
		t.Error("hidden vertex keeps its state")
	}
	if v.State(e) != nil {
		t.Error("edge to a hidden terminal keeps its state")
	}
}

func TestScaleAndTranslate(t *testing.T) {
	s := newScenario(t)
	var names []string
	s.v.Events().AddListener("", func(e *event.Event) { names = append(names, e.Name) })

	s.v.SetScale(2)
	if st := s.v.State(s.a); st.X != 40 || st.Width != 160 || st.UnscaledWidth != 80 {
		t.Errorf("scaled A = %+v", st.Bounds())
	}
	s.v.SetTranslate(10, 10)
	if st := s.v.State(s.a); st.X != 60 || st.Y != 60 {
		t.Errorf("translated A = %+v", st.Bounds())
	}
	if cb := s.v.State(s.a).CachedBounds(); cb != (geometry.Rectangle{X: 20, Y: 20, Width: 80, Height: 30}) {
		t.Errorf("CachedBounds = %+v", cb)
	}
	s.v.SetScale(2)

	want := []string{event.Scale, event.Translate, event.Scale}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestStyleInvalidation(t *testing.T) {
	s := newScenario(t)
	s.m.SetStyle(s.a, style.MustParse("fillColor=#ff0000"))
	s.v.Validate("")
	if got := s.v.State(s.a).Style.FillColor; got == "#ff0000" {
		t.Fatal("style changed without invalidation")
	}

	s.v.Invalidate(s.a, true, true)
	s.v.InvalidateStyle(s.a)
	s.v.Validate("")
	if got := s.v.State(s.a).Style.FillColor; got != "#ff0000" {
		t.Errorf("fillColor = %q, want #ff0000", got)
	}
}

type fakeShape struct{ destroyed bool }

func (f *fakeShape) Destroy() { f.destroyed = true }

func TestClearDestroysShapes(t *testing.T) {
	s := newScenario(t)
	shape := &fakeShape{}
	s.v.State(s.a).Shape = shape

	s.v.Clear("", false, true)
	if !shape.destroyed {
		t.Error("shape was not destroyed")
	}
	if s.v.Len() != 0 {
		t.Errorf("Len = %d after clearing the root", s.v.Len())
	}

	s.v.Validate("")
	if s.v.Len() != 5 {
		t.Errorf("Len = %d after revalidation, want 5", s.v.Len())
	}
}

func TestCurrentRoot(t *testing.T) {
	m := model.New()
	v := New(m, nil)
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateVertex(nil, geometry.New(10, 10, 300, 200), style.Style{})
	c := m.CreateVertex(nil, geometry.New(5, 5, 20, 20), style.Style{})
	x := m.CreateVertex(nil, geometry.New(400, 10, 20, 20), style.Style{})
	m.Batch(func() {
		m.Add(layer, g, -1)
		m.Add(g, c, -1)
		m.Add(layer, x, -1)
	})
	v.Validate("")

	var edits []*model.Edit
	var dirs []string
	v.Events().AddListener(event.Undo, func(e *event.Event) {
		edits = append(edits, e.Payload.(model.EditEvent).Edit)
	})
	v.Events().AddListener("", func(e *event.Event) {
		if e.Name == event.Up || e.Name == event.Down {
			dirs = append(dirs, e.Name)
		}
	})

	v.SetCurrentRoot(g)
	if v.CurrentRoot() != g {
		t.Fatalf("CurrentRoot = %q", v.CurrentRoot())
	}
	if st := v.State(c); st == nil || st.X != 5 {
		t.Errorf("child inside current root = %+v, want X 5", st)
	}
	if v.State(x) != nil {
		t.Error("cell outside the current root has a state")
	}
	if len(edits) != 1 || !edits[0].IsSignificant() {
		t.Fatalf("edits = %d", len(edits))
	}

	edits[0].Undo()
	if v.CurrentRoot() != "" {
		t.Errorf("CurrentRoot after undo = %q", v.CurrentRoot())
	}
	if st := v.State(c); st == nil || st.X != 15 {
		t.Errorf("child after undo = %+v, want X 15", st)
	}
	if v.State(x) == nil {
		t.Error("sibling state missing after going up")
	}

	edits[0].Redo()
	if v.CurrentRoot() != g {
		t.Errorf("CurrentRoot after redo = %q", v.CurrentRoot())
	}
	want := []string{event.Down, event.Up, event.Down}
	if len(dirs) != len(want) {
		t.Fatalf("directions = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("direction %d = %s, want %s", i, dirs[i], want[i])
		}
	}
}

func TestCurrentRootChangeDirection(t *testing.T) {
	m := model.New()
	v := New(m, nil)
	layer := m.ChildAt(m.Root(), 0)
	g := m.CreateVertex(nil, geometry.New(0, 0, 10, 10), style.Style{})
	c := m.CreateVertex(nil, geometry.New(0, 0, 5, 5), style.Style{})
	m.Batch(func() {
		m.Add(layer, g, -1)
		m.Add(g, c, -1)
	})

	if NewCurrentRootChange(v, g).IsUp() {
		t.Error("drilling into a group must go down")
	}
	v.SetCurrentRoot(c)
	if !NewCurrentRootChange(v, g).IsUp() {
		t.Error("moving to an ancestor of the current root must go up")
	}
	if !NewCurrentRootChange(v, "").IsUp() {
		t.Error("returning to the model root must go up")
	}
}
