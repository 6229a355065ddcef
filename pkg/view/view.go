package view

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Stats counts the work done by a view since it was created.
type Stats struct {
	// Validations counts calls to [View.Validate].
	Validations int

	// Recomputed counts state recomputations. Validating an already valid
	// view leaves it unchanged.
	Recomputed int

	// Created and Removed count states entering and leaving the cache.
	Created int
	Removed int
}

// ScaleEvent is the payload of the Scale event.
type ScaleEvent struct {
	Scale, Previous float64
}

// TranslateEvent is the payload of the Translate event.
type TranslateEvent struct {
	Translate, Previous geometry.Point
}

// ScaleAndTranslateEvent is the payload of the ScaleAndTranslate event.
type ScaleAndTranslateEvent struct {
	Scale, PreviousScale         float64
	Translate, PreviousTranslate geometry.Point
}

// RootEvent is the payload of the Up and Down events.
type RootEvent struct {
	Root, Previous string
}

// View keeps one [CellState] per visible cell of a model.
//
// States are invalidated when the model changes and recomputed lazily by
// [View.Validate]. The view does not listen to the model itself: its owner
// decides what to invalidate for each change and validates afterwards.
//
// A View is not safe for concurrent use.
type View struct {
	model  *model.Model
	host   Host
	events *event.Source

	states       map[string]*CellState
	invalidating map[string]bool
	perimeters   map[string]PerimeterFunc

	currentRoot string
	scale       float64
	translate   geometry.Point
	graphBounds geometry.Rectangle

	stats Stats
}

// New returns a view of m. A nil host uses [NewDefaultHost] with the
// default stylesheet.
func New(m *model.Model, host Host) *View {
	if host == nil {
		host = NewDefaultHost(m, nil)
	}
	v := &View{
		model:        m,
		host:         host,
		states:       make(map[string]*CellState),
		invalidating: make(map[string]bool),
		perimeters:   maps.Clone(defaultPerimeters),
		scale:        1,
	}
	v.events = event.NewSource(v)
	return v
}

// Events returns the event source firing Scale, Translate,
// ScaleAndTranslate, Up, Down and Undo.
func (v *View) Events() *event.Source { return v.events }

// Model returns the model the view renders.
func (v *View) Model() *model.Model { return v.model }

// Stats returns the work counters.
func (v *View) Stats() Stats { return v.stats }

// CurrentRoot returns the cell the view is drilled into, or "" for the
// model root.
func (v *View) CurrentRoot() string { return v.currentRoot }

// Scale returns the current scale.
func (v *View) Scale() float64 { return v.scale }

// Translate returns the current translate.
func (v *View) Translate() geometry.Point { return v.translate }

// GraphBounds returns the union of the validated states as of the last
// validation. An empty view yields a zero-sized rectangle at the scaled
// translate.
func (v *View) GraphBounds() geometry.Rectangle { return v.graphBounds }

// =============================================================================
// States
// =============================================================================

// State returns the state of id, or nil if the cell is not part of the
// model or has no state.
func (v *View) State(id string) *CellState {
	if !v.model.Contains(id) {
		return nil
	}
	return v.states[id]
}

// States returns the states of ids, skipping cells without state.
func (v *View) States(ids []string) []*CellState {
	var out []*CellState
	for _, id := range ids {
		if s := v.State(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of cached states.
func (v *View) Len() int { return len(v.states) }

// IDs returns the ids of all cached states, sorted.
func (v *View) IDs() []string { return slices.Sorted(maps.Keys(v.states)) }

// RemoveState drops the state of id and destroys its shape. It returns the
// removed state, or nil.
func (v *View) RemoveState(id string) *CellState {
	s := v.states[id]
	if s == nil {
		return nil
	}
	delete(v.states, id)
	s.destroy()
	v.stats.Removed++
	return s
}

// state returns the cached state of id. With create, a missing state is
// created for visible cells.
func (v *View) state(id string, create bool) *CellState {
	if id == "" {
		return nil
	}
	s := v.states[id]
	if create && s == nil && v.host.IsCellVisible(id) {
		s = newState(id, v.host.CellStyle(id))
		v.states[id] = s
		v.stats.Created++
	}
	return s
}

// =============================================================================
// Invalidation
// =============================================================================

// Invalidate marks the state of id invalid. With recurse the descendants
// are invalidated too, with includeEdges the connected edges. An empty id
// invalidates the model root.
func (v *View) Invalidate(id string, recurse, includeEdges bool) {
	if id == "" {
		id = v.model.Root()
	}
	if s := v.states[id]; s != nil {
		s.Invalid = true
	}
	if v.invalidating[id] {
		return
	}
	v.invalidating[id] = true
	defer delete(v.invalidating, id)

	if recurse {
		for _, child := range v.model.Children(id) {
			v.Invalidate(child, recurse, includeEdges)
		}
	}
	if includeEdges {
		for _, edge := range v.model.ConnectedEdges(id) {
			v.Invalidate(edge, recurse, includeEdges)
		}
	}
}

// InvalidateStyle marks the state of id invalid and makes the next
// validation resolve its style again.
func (v *View) InvalidateStyle(id string) {
	if s := v.states[id]; s != nil {
		s.Invalid = true
		s.InvalidStyle = true
	}
}

// Clear removes the state of id. With recurse the states of descendants
// are removed as well; the current root keeps its descendants unless force
// is set and is invalidated instead. An empty id clears from the model
// root.
func (v *View) Clear(id string, force, recurse bool) {
	if id == "" {
		id = v.model.Root()
	}
	v.RemoveState(id)
	if recurse && (force || id != v.currentRoot) {
		for _, child := range v.model.Children(id) {
			v.Clear(child, force, true)
		}
	} else {
		v.Invalidate(id, true, true)
	}
}

// Revalidate invalidates every state and validates the view.
func (v *View) Revalidate() {
	v.Invalidate("", true, true)
	v.Validate("")
}

// Refresh invalidates and validates every state. When the view is drilled
// into a group all states are dropped first.
func (v *View) Refresh() {
	if v.currentRoot != "" {
		v.Clear("", true, true)
	}
	v.Revalidate()
}

// =============================================================================
// Scale and translate
// =============================================================================

// SetScale sets the scale and revalidates the view if it changed. The
// Scale event fires in either case.
func (v *View) SetScale(scale float64) {
	prev := v.scale
	if scale != prev {
		v.scale = scale
		v.stateChanged()
	}
	v.events.Fire(event.Scale, ScaleEvent{Scale: scale, Previous: prev})
}

// SetTranslate sets the translate and revalidates the view if it changed.
// The Translate event fires in either case.
func (v *View) SetTranslate(dx, dy float64) {
	prev := v.translate
	if dx != prev.X || dy != prev.Y {
		v.translate = geometry.Point{X: dx, Y: dy}
		v.stateChanged()
	}
	v.events.Fire(event.Translate, TranslateEvent{Translate: v.translate, Previous: prev})
}

// ScaleAndTranslate sets both in one revalidation.
func (v *View) ScaleAndTranslate(scale, dx, dy float64) {
	prevScale, prevTranslate := v.scale, v.translate
	if scale != prevScale || dx != prevTranslate.X || dy != prevTranslate.Y {
		v.scale = scale
		v.translate = geometry.Point{X: dx, Y: dy}
		v.stateChanged()
	}
	v.events.Fire(event.ScaleAndTranslate, ScaleAndTranslateEvent{
		Scale:             scale,
		PreviousScale:     prevScale,
		Translate:         v.translate,
		PreviousTranslate: prevTranslate,
	})
}

func (v *View) stateChanged() {
	if v.events.IsEnabled() {
		v.Revalidate()
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate brings the states below id up to date: states are created and
// removed according to visibility, then invalid states are recomputed. An
// empty id validates from the current root, or the model root when there
// is none.
func (v *View) Validate(id string) {
	start := time.Now()
	recomputed := v.stats.Recomputed
	v.stats.Validations++

	if id == "" {
		id = v.currentRoot
	}
	if id == "" {
		id = v.model.Root()
	}
	v.validateCell(id, true)
	found := false
	var bounds geometry.Rectangle
	if v.validateCellState(id, true) != nil {
		bounds = v.boundingBox(id, bounds, &found)
	}
	if !found {
		bounds = geometry.Rectangle{X: v.translate.X * v.scale, Y: v.translate.Y * v.scale}
	}
	v.graphBounds = bounds

	observability.View().OnValidate(len(v.states), v.stats.Recomputed-recomputed, time.Since(start))
}

// validateCell creates states for visible cells and removes the states of
// hidden ones. Descendants of a hidden cell are walked as hidden so their
// states go too.
func (v *View) validateCell(id string, visible bool) {
	if id == "" {
		return
	}
	visible = visible && v.host.IsCellVisible(id)
	if s := v.state(id, visible); s != nil && !visible {
		v.RemoveState(id)
	}
	childVisible := visible && (!v.model.IsCollapsed(id) || id == v.currentRoot)
	for _, child := range v.model.Children(id) {
		v.validateCell(child, childVisible)
	}
}

// validateCellState recomputes the state of id if it is invalid, after its
// parent and visible terminals. It returns nil if the cell has no state,
// including when the recomputation removed it.
func (v *View) validateCellState(id string, recurse bool) *CellState {
	s := v.states[id]
	if s == nil {
		return nil
	}
	if s.Invalid {
		s.Invalid = false
		if s.InvalidStyle {
			s.Style = v.host.CellStyle(id)
			s.InvalidStyle = false
		}
		if id != v.currentRoot {
			v.validateCellState(v.model.Parent(id), false)
		}
		s.VisibleSource = stateID(v.validateCellState(v.visibleTerminal(id, true), false))
		s.VisibleTarget = stateID(v.validateCellState(v.visibleTerminal(id, false), false))

		v.updateCellState(s)
		if v.states[id] != s {
			return nil
		}
		if id != v.currentRoot && !s.Invalid {
			s.updateCachedBounds(v.scale, v.translate)
		}
	}
	if recurse && !s.Invalid {
		for _, child := range v.model.Children(id) {
			v.validateCellState(child, true)
		}
	}
	return s
}

func stateID(s *CellState) string {
	if s == nil {
		return ""
	}
	return s.Cell
}

// visibleTerminal returns the cell an edge end is drawn to: the terminal
// itself, or its topmost collapsed or hidden ancestor below the current
// root. It returns "" if that cell is a layer or the current root.
func (v *View) visibleTerminal(edge string, source bool) string {
	result := v.model.Terminal(edge, source)
	best := result
	for result != "" && result != v.currentRoot {
		if (best != "" && !v.host.IsCellVisible(best)) || v.model.IsCollapsed(result) {
			best = result
		}
		result = v.model.Parent(result)
	}
	if best != "" && (!v.model.Contains(best) || v.model.IsRoot(v.model.Parent(best)) || best == v.currentRoot) {
		return ""
	}
	return best
}

// updateCellState computes the bounds of s from its geometry and the state
// of its parent.
func (v *View) updateCellState(s *CellState) {
	v.stats.Recomputed++
	s.reset()
	if s.Cell == v.currentRoot {
		s.updateCachedBounds(v.scale, v.translate)
		return
	}

	parent := v.model.Parent(s.Cell)
	ps := v.states[parent]
	if ps != nil && ps.Cell != v.currentRoot {
		s.Origin = s.Origin.Translate(ps.Origin.X, ps.Origin.Y)
	}
	if off := v.host.ChildOffset(s.Cell); off != nil {
		s.Origin = s.Origin.Translate(off.X, off.Y)
	}

	c := v.model.Cell(s.Cell)
	geo := c.Geometry
	if geo == nil {
		s.updateCachedBounds(v.scale, v.translate)
		return
	}

	if !c.Edge {
		var offset geometry.Point
		if geo.Offset != nil {
			offset = *geo.Offset
		}
		switch {
		case geo.Relative && ps != nil && v.model.IsEdge(ps.Cell):
			p := v.pointOnEdge(ps, geo)
			s.Origin.X += p.X/v.scale - ps.Origin.X - v.translate.X
			s.Origin.Y += p.Y/v.scale - ps.Origin.Y - v.translate.Y
		case geo.Relative && ps != nil:
			s.Origin.X += geo.X*ps.UnscaledWidth + offset.X
			s.Origin.Y += geo.Y*ps.UnscaledHeight + offset.Y
		default:
			s.AbsoluteOffset = offset.Scale(v.scale)
			s.Origin = s.Origin.Translate(geo.X, geo.Y)
		}
	}

	s.X = v.scale * (v.translate.X + s.Origin.X)
	s.Y = v.scale * (v.translate.Y + s.Origin.Y)
	s.Width = v.scale * geo.Width
	s.UnscaledWidth = geo.Width
	s.Height = v.scale * geo.Height
	s.UnscaledHeight = geo.Height

	if c.Vertex {
		v.updateVertexState(s, geo, ps)
	}
	if c.Edge {
		v.updateEdgeState(s, geo)
	}
}

// updateVertexState rotates relative children with their rotated parent
// and places the label.
func (v *View) updateVertexState(s *CellState, geo *geometry.Geometry, ps *CellState) {
	if geo.Relative && ps != nil && !v.model.IsEdge(ps.Cell) {
		if alpha := ps.Style.Number(style.KeyRotation, 0); alpha != 0 {
			p := rotate(s.Center(), alpha, ps.Center())
			s.X = p.X - s.Width/2
			s.Y = p.Y - s.Height/2
		}
	}
	v.updateVertexLabelOffset(s)
}

// updateVertexLabelOffset moves the label outside the vertex for the
// left/right/top/bottom label positions.
func (v *View) updateVertexLabelOffset(s *CellState) {
	switch s.Style.LabelPosition {
	case style.AlignLeft:
		s.AbsoluteOffset.X -= s.Width
	case style.AlignRight:
		s.AbsoluteOffset.X += s.Width
	}
	switch s.Style.VerticalLabelPosition {
	case style.AlignTop:
		s.AbsoluteOffset.Y -= s.Height
	case style.AlignBottom:
		s.AbsoluteOffset.Y += s.Height
	}
}

// boundingBox unions the bounds of the vertex and edge states below id
// into acc. found is set once the first state was added.
func (v *View) boundingBox(id string, acc geometry.Rectangle, found *bool) geometry.Rectangle {
	s := v.states[id]
	if s == nil {
		return acc
	}
	if id != v.currentRoot && (v.model.IsVertex(id) || v.model.IsEdge(id)) {
		if *found {
			acc = acc.Add(s.Bounds())
		} else {
			acc, *found = s.Bounds(), true
		}
	}
	for _, child := range v.model.Children(id) {
		acc = v.boundingBox(child, acc, found)
	}
	return acc
}
