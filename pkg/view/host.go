package view

import (
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Host supplies the graph-level decisions the view delegates. The graph
// facade implements it; [DefaultHost] covers standalone views.
type Host interface {
	// CellStyle returns the resolved style of a cell.
	CellStyle(id string) style.Style

	// ChildOffset returns an extra offset for a cell inside its parent, or
	// nil.
	ChildOffset(id string) *geometry.Point

	// TranslateForRoot returns the translate to apply when root becomes the
	// current root, or nil to keep the current translate.
	TranslateForRoot(root string) *geometry.Point

	// IsCellVisible reports whether a cell gets a state.
	IsCellVisible(id string) bool
}

// DefaultHost resolves styles against a stylesheet and takes visibility
// from the model.
type DefaultHost struct {
	Model      *model.Model
	Stylesheet *style.Stylesheet
}

var _ Host = (*DefaultHost)(nil)

// NewDefaultHost returns a host over m. A nil stylesheet uses
// [style.NewStylesheet].
func NewDefaultHost(m *model.Model, ss *style.Stylesheet) *DefaultHost {
	if ss == nil {
		ss = style.NewStylesheet()
	}
	return &DefaultHost{Model: m, Stylesheet: ss}
}

// CellStyle resolves the cell's own style over the default vertex or edge
// style.
func (h *DefaultHost) CellStyle(id string) style.Style {
	return h.Stylesheet.Resolve(h.Model.Style(id), h.Model.IsEdge(id))
}

// ChildOffset returns nil.
func (h *DefaultHost) ChildOffset(string) *geometry.Point { return nil }

// TranslateForRoot returns nil.
func (h *DefaultHost) TranslateForRoot(string) *geometry.Point { return nil }

// IsCellVisible returns the visible flag of the cell.
func (h *DefaultHost) IsCellVisible(id string) bool { return h.Model.IsVisible(id) }
