package graph

import (
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
	"github.com/matzehuels/cellgraph/pkg/view"
)

// DefaultStartSize is the header size of a swimlane without a startSize
// style.
const DefaultStartSize = 40

// StateView gives access to the current states of a view.
type StateView interface {
	State(id string) *view.CellState
	CurrentRoot() string
}

// Swimlanes answers questions about swimlane containers: vertices whose
// style sets swimlane and that reserve a header strip for their label.
type Swimlanes struct {
	model  *model.Model
	styles Styler
	states StateView
}

// NewSwimlanes returns the swimlane capability over m.
func NewSwimlanes(m *model.Model, styles Styler, states StateView) *Swimlanes {
	return &Swimlanes{model: m, styles: styles, states: states}
}

// IsSwimlane reports whether id is a swimlane.
func (s *Swimlanes) IsSwimlane(id string) bool {
	if !s.model.IsVertex(id) || s.model.IsRoot(id) || s.model.IsLayer(id) {
		return false
	}
	return s.styles.CellStyle(id).Flag(style.KeySwimlane, false)
}

// StartSize returns the header size of id: a height for horizontal
// swimlanes, a width otherwise. Non-swimlanes have none.
func (s *Swimlanes) StartSize(id string) geometry.Rectangle {
	if !s.IsSwimlane(id) {
		return geometry.Rectangle{}
	}
	st := s.styles.CellStyle(id)
	size := st.Number(style.KeyStartSize, DefaultStartSize)
	if st.Flag(style.KeyHorizontal, true) {
		return geometry.Rectangle{Height: size}
	}
	return geometry.Rectangle{Width: size}
}

// Swimlane returns id if it is a swimlane, else its nearest swimlane
// ancestor, or "".
func (s *Swimlanes) Swimlane(id string) string {
	for ; id != ""; id = s.model.Parent(id) {
		if s.IsSwimlane(id) {
			return id
		}
	}
	return ""
}

// SwimlaneAt returns the innermost displayed swimlane containing x, y in
// view coordinates, searching below parent or the current root for "".
func (s *Swimlanes) SwimlaneAt(x, y float64, parent string) string {
	if parent == "" {
		parent = s.states.CurrentRoot()
	}
	if parent == "" {
		parent = s.model.Root()
	}
	children := s.model.Children(parent)
	for i := len(children) - 1; i >= 0; i-- {
		id := children[i]
		if hit := s.SwimlaneAt(x, y, id); hit != "" {
			return hit
		}
		if !s.IsSwimlane(id) {
			continue
		}
		if st := s.states.State(id); st != nil && st.Bounds().Contains(x, y) {
			return id
		}
	}
	return ""
}
