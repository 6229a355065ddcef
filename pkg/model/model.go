package model

import (
	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Model owns a tree of cells and is the only place cells are mutated.
//
// Every cell the model knows about lives in one table keyed by ID. A cell is
// part of the graph when it is reachable from the root through parent links;
// cells created but not yet added, or removed, stay in the table detached so
// that undo can bring them back. Use [Model.Compact] to drop detached cells
// that no history refers to.
//
// All mutations are recorded as [Change] values in the current [Edit]. See
// [Model.BeginUpdate] for batching.
//
// The zero value is not usable - use [New]. Model is not safe for concurrent
// use.
type Model struct {
	cells map[string]*cell.Cell
	root  string

	events *event.Source

	currentEdit  *Edit
	updateLevel  int
	endingUpdate bool

	ids     IDGenerator
	prefix  string
	postfix string
	nextID  int

	maintainEdgeParent bool
}

// Option configures a [Model].
type Option func(*Model)

// WithIDGenerator makes the model ask g for new cell IDs instead of using
// its sequential counter.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Model) { m.ids = g }
}

// WithIDAffixes sets the prefix and postfix around sequential IDs.
func WithIDAffixes(prefix, postfix string) Option {
	return func(m *Model) {
		m.prefix = prefix
		m.postfix = postfix
	}
}

// WithMaintainEdgeParent controls whether edges are moved into the nearest
// common ancestor of their terminals when cells are added or reconnected.
// It is enabled by default.
func WithMaintainEdgeParent(enabled bool) Option {
	return func(m *Model) { m.maintainEdgeParent = enabled }
}

// New returns a model holding a root cell with one default layer. The
// initial tree is not recorded as an edit.
func New(opts ...Option) *Model {
	m := &Model{
		cells:              make(map[string]*cell.Cell),
		maintainEdgeParent: true,
	}
	m.events = event.NewSource(m)
	for _, opt := range opts {
		opt(m)
	}
	m.currentEdit = m.createEdit()
	m.root = m.createRoot()
	return m
}

// Events returns the event source of the model. Listeners receive
// [EditEvent] payloads for Change, Notify, BeforeUndo, Undo and EndUpdate,
// and [ExecuteEvent] payloads for Execute and Executed.
func (m *Model) Events() *event.Source { return m.events }

// EditEvent is the payload of events that carry an edit.
type EditEvent struct {
	Edit *Edit
}

// ExecuteEvent is the payload of Execute and Executed events.
type ExecuteEvent struct {
	Change Change
}

// MaintainEdgeParent reports whether edge parents are kept up to date.
func (m *Model) MaintainEdgeParent() bool { return m.maintainEdgeParent }

// SetMaintainEdgeParent enables or disables edge parent maintenance.
func (m *Model) SetMaintainEdgeParent(enabled bool) { m.maintainEdgeParent = enabled }

// createRoot registers a fresh root with a single layer, linked directly
// since both cells are new.
func (m *Model) createRoot() string {
	root := m.Register(cell.New(nil, nil, style.Style{}))
	layer := m.Register(cell.New(nil, nil, style.Style{}))
	m.cells[root].Children = []string{layer}
	m.cells[layer].Parent = root
	return root
}

// =============================================================================
// Registration
// =============================================================================

// Register adds a detached cell to the model and returns its ID. The cell
// keeps its ID if it is set and unused; otherwise a new ID is created. Any
// links on c are cleared. Attach the cell with [Model.Add].
func (m *Model) Register(c *cell.Cell) string {
	if c.ID == "" {
		c.ID = m.createID()
	}
	for {
		existing, ok := m.cells[c.ID]
		if !ok || existing == c {
			break
		}
		c.ID = m.createID()
	}
	c.Parent = ""
	c.Children = nil
	c.Source = ""
	c.Target = ""
	c.Edges = nil
	m.observeID(c.ID)
	m.cells[c.ID] = c
	return c.ID
}

// CreateVertex registers a new detached vertex and returns its ID.
func (m *Model) CreateVertex(value any, geo *geometry.Geometry, st style.Style) string {
	return m.Register(cell.NewVertex(value, geo.Clone(), st.Clone()))
}

// CreateEdge registers a new detached edge and returns its ID.
func (m *Model) CreateEdge(value any, geo *geometry.Geometry, st style.Style) string {
	return m.Register(cell.NewEdge(value, geo.Clone(), st.Clone()))
}

// CreateCell registers a new detached container cell (group or layer) and
// returns its ID.
func (m *Model) CreateCell(value any, geo *geometry.Geometry, st style.Style) string {
	return m.Register(cell.New(value, geo.Clone(), st.Clone()))
}

// Compact removes detached cells from the table. A detached cell is kept if
// retain reports true for it or for one of its detached ancestors. Links of
// the remaining cells to removed IDs are cleared, so a kept cell whose
// detached parent was removed becomes a detached root itself. It returns
// the number of cells removed.
func (m *Model) Compact(retain func(id string) bool) int {
	keep := func(id string) bool {
		for id != "" {
			if retain != nil && retain(id) {
				return true
			}
			c := m.cells[id]
			if c == nil {
				return false
			}
			id = c.Parent
		}
		return false
	}

	var drop []string
	for id := range m.cells {
		if id == m.root || m.Contains(id) || keep(id) {
			continue
		}
		drop = append(drop, id)
	}
	for _, id := range drop {
		delete(m.cells, id)
	}
	if len(drop) == 0 {
		return 0
	}
	gone := func(id string) bool {
		_, ok := m.cells[id]
		return id != "" && !ok
	}
	for _, c := range m.cells {
		if gone(c.Parent) {
			c.Parent = ""
		}
		if gone(c.Source) {
			c.Source = ""
		}
		if gone(c.Target) {
			c.Target = ""
		}
		for i := len(c.Edges) - 1; i >= 0; i-- {
			if _, ok := m.cells[c.Edges[i]]; !ok {
				c.RemoveEdge(c.Edges[i])
			}
		}
		for i := len(c.Children) - 1; i >= 0; i-- {
			if _, ok := m.cells[c.Children[i]]; !ok {
				c.RemoveChild(c.Children[i])
			}
		}
	}
	return len(drop)
}

// Len returns the number of cells in the table, attached or not.
func (m *Model) Len() int { return len(m.cells) }
