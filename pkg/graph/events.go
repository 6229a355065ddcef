package graph

import "github.com/matzehuels/cellgraph/pkg/geometry"

// Payloads of the events fired on [Graph.Events]. Each event name is the
// matching constant in package event.

// CellsEvent lists the cells affected by CellsAdded, CellsRemoved and
// UngroupCells.
type CellsEvent struct {
	Cells []string
}

// MoveEvent is the payload of CellsMoved.
type MoveEvent struct {
	Cells  []string
	DX, DY float64
}

// ResizeEvent is the payload of CellsResized. Bounds holds the new bounds
// of each cell, in the order of Cells.
type ResizeEvent struct {
	Cells  []string
	Bounds []geometry.Rectangle
}

// FoldEvent is the payload of CellsFolded.
type FoldEvent struct {
	Cells    []string
	Collapse bool
}

// ToggleEvent is the payload of CellsToggled.
type ToggleEvent struct {
	Cells []string
	Show  bool
}

// OrderEvent is the payload of CellsOrdered.
type OrderEvent struct {
	Cells []string
	Back  bool
}

// GroupEvent is the payload of GroupCells.
type GroupEvent struct {
	Group  string
	Border float64
	Cells  []string
}

// LabelEvent is the payload of LabelChanged.
type LabelEvent struct {
	Cell     string
	Value    any
	Previous any
}

// EditingEvent is the payload of EditingStarted and EditingStopped.
type EditingEvent struct {
	Cell   string
	Cancel bool
}

// ValidationEvent is the payload of Validated: the errors per cell, empty
// when the graph is valid.
type ValidationEvent struct {
	Errors map[string][]string
}
