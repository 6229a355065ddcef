package event

import "slices"

// Event names fired by models, views, selections and undo managers.
const (
	Change            = "change"
	Notify            = "notify"
	Execute           = "execute"
	Executed          = "executed"
	BeginUpdate       = "beginUpdate"
	EndUpdate         = "endUpdate"
	StartEdit         = "startEdit"
	EndEdit           = "endEdit"
	BeforeUndo        = "beforeUndo"
	Undo              = "undo"
	Redo              = "redo"
	Add               = "add"
	Clear             = "clear"
	Root              = "root"
	Up                = "up"
	Down              = "down"
	Scale             = "scale"
	Translate         = "translate"
	ScaleAndTranslate = "scaleAndTranslate"
	Select            = "select"
	EditingStarted    = "editingStarted"
	EditingStopped    = "editingStopped"
	LabelChanged      = "labelChanged"
	CellsOrdered      = "cellsOrdered"
	GroupCells        = "groupCells"
	UngroupCells      = "ungroupCells"
	CellsRemoved      = "cellsRemoved"
	CellsAdded        = "cellsAdded"
	CellsMoved        = "cellsMoved"
	CellsResized      = "cellsResized"
	CellsFolded       = "cellsFolded"
	CellsToggled      = "cellsToggled"
	Validated         = "validated"
)

// Event is a single notification. Payload carries event specific data, for
// example the edit of a Change event.
type Event struct {
	Name    string
	Source  any
	Payload any

	consumed bool
}

// Consume marks the event as handled. Sources may check [Event.Consumed]
// after firing to skip their default behavior.
func (e *Event) Consume() { e.consumed = true }

// Consumed reports whether a listener called Consume.
func (e *Event) Consumed() bool { return e.consumed }

// Listener handles an event.
type Listener func(*Event)

// Subscription identifies a registered listener for removal.
type Subscription struct {
	name string
	id   uint64
}

type entry struct {
	name string
	id   uint64
	fn   Listener
}

// Source dispatches events to listeners in registration order.
//
// The zero value is ready to use. Source is not safe for concurrent use.
type Source struct {
	owner     any
	listeners []entry
	nextID    uint64
	disabled  bool
}

// NewSource returns a source that reports owner as the event source.
func NewSource(owner any) *Source {
	return &Source{owner: owner}
}

// SetOwner sets the value reported as [Event.Source].
func (s *Source) SetOwner(owner any) { s.owner = owner }

// SetEnabled turns dispatching on or off. A disabled source drops events.
func (s *Source) SetEnabled(enabled bool) { s.disabled = !enabled }

// IsEnabled reports whether events are dispatched.
func (s *Source) IsEnabled() bool { return !s.disabled }

// AddListener registers fn for events called name. The empty name receives
// every event.
func (s *Source) AddListener(name string, fn Listener) Subscription {
	s.nextID++
	s.listeners = append(s.listeners, entry{name: name, id: s.nextID, fn: fn})
	return Subscription{name: name, id: s.nextID}
}

// RemoveListener unregisters a listener. Removing twice is a no-op.
func (s *Source) RemoveListener(sub Subscription) {
	s.listeners = slices.DeleteFunc(s.listeners, func(e entry) bool { return e.id == sub.id })
}

// ListenerCount returns the number of registered listeners.
func (s *Source) ListenerCount() int { return len(s.listeners) }

// Fire dispatches an event to all matching listeners and returns it.
// Listeners added or removed during dispatch take effect on the next call.
func (s *Source) Fire(name string, payload any) *Event {
	ev := &Event{Name: name, Source: s.owner, Payload: payload}
	if s.disabled {
		return ev
	}
	for _, e := range slices.Clone(s.listeners) {
		if e.name == "" || e.name == name {
			e.fn(ev)
		}
	}
	return ev
}
