package graph

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/selection"
	"github.com/matzehuels/cellgraph/pkg/style"
	"github.com/matzehuels/cellgraph/pkg/undo"
	"github.com/matzehuels/cellgraph/pkg/view"
)

// Graph ties a model to its view, selection, undo history and stylesheet.
//
// Graph listens to the Change notification of its model. For every
// committed edit it invalidates the affected states, prunes the selection
// and validates the view, so after any mutation returns the states are
// current.
//
// Editing, grouping, swimlane, and validation support live in separate
// capability types that only see the parts of the graph they need; Graph
// exposes them through accessors.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	model      *model.Model
	view       *view.View
	selection  *selection.Model
	history    *undo.Manager
	stylesheet *style.Stylesheet
	events     *event.Source
	logger     *log.Logger

	editor    *Editor
	grouper   *Grouper
	swimlanes *Swimlanes
	validator *Validator
	tooltips  TooltipProvider

	defaultParent         string
	resetViewOnRootChange bool
	undoSize              int
	multiplicities        []Multiplicity
}

// Option configures a [Graph].
type Option func(*Graph)

// WithModel makes the graph operate on m instead of a fresh model.
func WithModel(m *model.Model) Option {
	return func(g *Graph) { g.model = m }
}

// WithStylesheet sets the stylesheet used to resolve cell styles.
func WithStylesheet(ss *style.Stylesheet) Option {
	return func(g *Graph) { g.stylesheet = ss }
}

// WithLogger sets the logger. The default is [log.Default].
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// WithUndoSize bounds the undo history. Zero selects [undo.DefaultSize],
// a negative size keeps every edit.
func WithUndoSize(n int) Option {
	return func(g *Graph) { g.undoSize = n }
}

// WithResetViewOnRootChange controls whether replacing the model root
// resets the view scale and translate. It is enabled by default.
func WithResetViewOnRootChange(reset bool) Option {
	return func(g *Graph) { g.resetViewOnRootChange = reset }
}

// WithTooltips sets the tooltip provider. The default returns the label.
func WithTooltips(p TooltipProvider) Option {
	return func(g *Graph) { g.tooltips = p }
}

// WithMultiplicities sets the connection rules checked by the validator.
func WithMultiplicities(rules ...Multiplicity) Option {
	return func(g *Graph) { g.multiplicities = rules }
}

// New returns a graph over a fresh model unless [WithModel] is given. The
// view is validated before New returns.
func New(opts ...Option) *Graph {
	g := &Graph{resetViewOnRootChange: true}
	for _, opt := range opts {
		opt(g)
	}
	if g.model == nil {
		g.model = model.New()
	}
	if g.stylesheet == nil {
		g.stylesheet = style.NewStylesheet()
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	if g.tooltips == nil {
		g.tooltips = TooltipFunc(g.Label)
	}

	g.events = event.NewSource(g)
	g.view = view.New(g.model, g)
	g.selection = selection.New(g)
	g.history = undo.New(g.undoSize)
	g.history.Attach(g.model.Events())
	g.history.Attach(g.view.Events())

	g.editor = NewEditor(g.model, g, g.events)
	g.swimlanes = NewSwimlanes(g.model, g, g.view)
	g.grouper = NewGrouper(g.model, g.swimlanes, g, g.events)
	g.validator = NewValidator(g.model, g.multiplicities...)

	g.model.Events().AddListener(event.Change, g.modelChanged)
	g.view.Validate("")
	return g
}

// Model returns the model.
func (g *Graph) Model() *model.Model { return g.model }

// View returns the view.
func (g *Graph) View() *view.View { return g.view }

// Selection returns the selection model.
func (g *Graph) Selection() *selection.Model { return g.selection }

// UndoManager returns the undo history of model and view edits.
func (g *Graph) UndoManager() *undo.Manager { return g.history }

// Compact drops detached cells that no edit in the undo history refers to
// and returns how many were dropped. Cells removed by an edit stay in the
// model as long as that edit can be undone.
func (g *Graph) Compact() int {
	n := g.model.Compact(g.history.References)
	if n > 0 {
		g.logger.Debug("compacted model", "cells", n, "remaining", g.model.Len())
	}
	return n
}

// Stylesheet returns the stylesheet.
func (g *Graph) Stylesheet() *style.Stylesheet { return g.stylesheet }

// Events returns the event source firing the graph level events.
func (g *Graph) Events() *event.Source { return g.events }

// Editor returns the in-place editing capability.
func (g *Graph) Editor() *Editor { return g.editor }

// Grouper returns the grouping and ordering capability.
func (g *Graph) Grouper() *Grouper { return g.grouper }

// Swimlanes returns the swimlane capability.
func (g *Graph) Swimlanes() *Swimlanes { return g.swimlanes }

// Validator returns the connection validation capability.
func (g *Graph) Validator() *Validator { return g.validator }

// =============================================================================
// View host
// =============================================================================

var _ view.Host = (*Graph)(nil)

// CellStyle returns the style of id resolved against the stylesheet.
func (g *Graph) CellStyle(id string) style.Style {
	return g.stylesheet.Resolve(g.model.Style(id), g.model.IsEdge(id))
}

// ChildOffset returns nil: children are placed at their geometry.
func (g *Graph) ChildOffset(string) *geometry.Point { return nil }

// TranslateForRoot returns nil: drilling into a group keeps the translate.
func (g *Graph) TranslateForRoot(string) *geometry.Point { return nil }

// IsCellVisible reports whether id is visible.
func (g *Graph) IsCellVisible(id string) bool { return g.model.IsVisible(id) }

// =============================================================================
// Change processing
// =============================================================================

func (g *Graph) modelChanged(e *event.Event) {
	ev, ok := e.Payload.(model.EditEvent)
	if !ok {
		return
	}
	for _, ch := range ev.Edit.Changes() {
		g.processChange(ch)
	}
	g.UpdateSelection()
	g.view.Validate("")
	g.logger.Debug("model changed", "changes", ev.Edit.Len(), "states", g.view.Len())
}

// processChange invalidates the view for one executed change.
func (g *Graph) processChange(ch model.Change) {
	switch c := ch.(type) {
	case *model.RootChange:
		g.ClearSelection()
		g.defaultParent = ""
		g.removeStateForCell(c.Previous)
		if g.resetViewOnRootChange {
			g.view.ScaleAndTranslate(1, 0, 0)
		}
		g.events.Fire(event.Root, nil)

	case *model.ChildChange:
		parent := g.model.Parent(c.Child)
		g.view.Invalidate(c.Child, true, true)
		if !g.model.Contains(parent) || g.model.IsCollapsed(parent) {
			g.removeStateForCell(c.Child)
			if g.view.CurrentRoot() == c.Child {
				g.Home()
			}
		}
		if parent != c.Previous {
			if parent != "" {
				g.view.Invalidate(parent, false, false)
			}
			if c.Previous != "" {
				g.view.Invalidate(c.Previous, false, false)
			}
		}

	case *model.TerminalChange:
		g.view.Invalidate(c.Cell, true, true)

	case *model.GeometryChange:
		if !c.Previous.Equal(c.Geometry) {
			g.view.Invalidate(c.Cell, true, true)
		}

	case *model.ValueChange:
		g.view.Invalidate(c.Cell, false, false)

	case *model.StyleChange:
		g.view.Invalidate(c.Cell, true, true)
		g.view.InvalidateStyle(c.Cell)

	case model.CellChange:
		// Collapse and visibility changes rebuild the subtree. The edges
		// of the subtree are invalidated first so they follow their
		// visible terminals.
		g.view.Invalidate(c.CellID(), true, true)
		g.removeStateForCell(c.CellID())
	}
}

// removeStateForCell drops the states of id and its descendants.
func (g *Graph) removeStateForCell(id string) {
	if id == "" {
		return
	}
	for _, child := range g.model.Children(id) {
		g.removeStateForCell(child)
	}
	g.view.Invalidate(id, false, true)
	g.view.RemoveState(id)
}

// UpdateSelection removes cells from the selection that are no longer part
// of the model, are hidden or sit inside a collapsed ancestor below the
// current root.
func (g *Graph) UpdateSelection() {
	var removed []string
	for _, id := range g.selection.Cells() {
		if !g.model.Contains(id) || !g.model.IsVisible(id) {
			removed = append(removed, id)
			continue
		}
		for p := g.model.Parent(id); p != "" && p != g.view.CurrentRoot(); p = g.model.Parent(p) {
			if g.model.IsCollapsed(p) || !g.model.IsVisible(p) {
				removed = append(removed, id)
				break
			}
		}
	}
	g.selection.RemoveCells(removed)
}

// =============================================================================
// Parents, labels and history
// =============================================================================

// DefaultParent returns the parent new cells go into: the current root,
// the parent set with [Graph.SetDefaultParent], or the first layer.
func (g *Graph) DefaultParent() string {
	if root := g.view.CurrentRoot(); root != "" {
		return root
	}
	if g.defaultParent != "" && g.model.Contains(g.defaultParent) {
		return g.defaultParent
	}
	return g.model.ChildAt(g.model.Root(), 0)
}

// SetDefaultParent sets the parent for new cells. "" restores the first
// layer.
func (g *Graph) SetDefaultParent(id string) { g.defaultParent = id }

// Label returns the display text of a cell value.
func (g *Graph) Label(id string) string {
	switch v := g.model.Value(id).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Tooltip returns the tooltip of a cell.
func (g *Graph) Tooltip(id string) string { return g.tooltips.Tooltip(id) }

// Batch runs fn as one model update, committed as one undoable edit.
func (g *Graph) Batch(fn func()) { g.model.Batch(fn) }

// Undo reverts the last significant edit.
func (g *Graph) Undo() { g.history.Undo() }

// Redo reapplies the last undone significant edit.
func (g *Graph) Redo() { g.history.Redo() }

// CanUndo reports whether there is an edit to undo.
func (g *Graph) CanUndo() bool { return g.history.CanUndo() }

// CanRedo reports whether there is an edit to redo.
func (g *Graph) CanRedo() bool { return g.history.CanRedo() }
