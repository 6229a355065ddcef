package view

import (
	"slices"

	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Shape is the painter an external renderer attaches to a state. The view
// only destroys it when the state goes away.
type Shape interface {
	Destroy()
}

// CellState holds the derived, view-specific facts for one cell: absolute
// bounds at the current scale and translate, the resolved style and, for
// edges, the absolute points.
//
// States are owned by their [View] and rebuilt from the model on demand.
// Callers must treat them as read-only.
type CellState struct {
	Cell string

	// Absolute bounds in view coordinates.
	X, Y, Width, Height float64

	// Geometry size before scaling.
	UnscaledWidth, UnscaledHeight float64

	// Origin is the unscaled, untranslated position of the cell relative to
	// the current root.
	Origin geometry.Point

	// AbsoluteOffset is the scaled label offset. For edges it is the
	// absolute label position.
	AbsoluteOffset geometry.Point

	// AbsolutePoints are the edge points from source to target in view
	// coordinates.
	AbsolutePoints []geometry.Point

	Style style.Style

	TerminalDistance float64
	Length           float64
	Segments         []float64

	// VisibleSource and VisibleTarget are the cells whose states an edge is
	// drawn between. They differ from the model terminals when a terminal
	// is hidden inside a collapsed ancestor.
	VisibleSource string
	VisibleTarget string

	Shape Shape

	Invalid      bool
	InvalidStyle bool

	cachedBounds geometry.Rectangle
}

func newState(id string, st style.Style) *CellState {
	return &CellState{Cell: id, Style: st, Invalid: true}
}

// Bounds returns the absolute bounds of s.
func (s *CellState) Bounds() geometry.Rectangle {
	return geometry.Rectangle{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// CachedBounds returns the bounds of s as of its last validation, unscaled
// and untranslated.
func (s *CellState) CachedBounds() geometry.Rectangle { return s.cachedBounds }

// CenterX returns the horizontal center of s.
func (s *CellState) CenterX() float64 { return s.X + s.Width/2 }

// CenterY returns the vertical center of s.
func (s *CellState) CenterY() float64 { return s.Y + s.Height/2 }

// Center returns the center of s.
func (s *CellState) Center() geometry.Point { return geometry.Point{X: s.CenterX(), Y: s.CenterY()} }

// Clone returns a copy of s without its shape.
func (s *CellState) Clone() *CellState {
	c := *s
	c.AbsolutePoints = slices.Clone(s.AbsolutePoints)
	c.Segments = slices.Clone(s.Segments)
	c.Style = s.Style.Clone()
	c.Shape = nil
	return &c
}

// destroy detaches and destroys the shape of s.
func (s *CellState) destroy() {
	if s.Shape != nil {
		s.Shape.Destroy()
		s.Shape = nil
	}
}

func (s *CellState) updateCachedBounds(scale float64, translate geometry.Point) {
	s.cachedBounds = geometry.Rectangle{
		X:      s.X/scale - translate.X,
		Y:      s.Y/scale - translate.Y,
		Width:  s.Width / scale,
		Height: s.Height / scale,
	}
}

func (s *CellState) reset() {
	s.AbsoluteOffset = geometry.Point{}
	s.Origin = geometry.Point{}
	s.Length = 0
}
