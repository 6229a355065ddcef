// Package view derives per-cell render state from a [model.Model].
//
// # States
//
// A [View] caches one [CellState] per visible cell below its current root.
// A state holds absolute bounds at the view's scale and translate, the
// resolved style and, for edges, the absolute points from source to
// target. States are derived data: they are never persisted and can be
// rebuilt from the model at any time.
//
// # Invalidation and validation
//
// The view does not subscribe to the model. Whoever owns it translates
// committed changes into invalidations and then validates:
//
//	v.Invalidate(id, true, true) // the cell, its descendants, their edges
//	v.Validate("")
//
// Validation runs in two passes over the tree below the current root.
// The first creates states for visible cells and drops the states of
// hidden ones; children of collapsed cells count as hidden. The second
// recomputes every invalid state after its parent and the states of the
// cells its ends are drawn to. Valid states are left alone, so validating
// twice in a row recomputes nothing; [Stats] makes that observable.
//
// # Edges
//
// Edge points are built from the geometry: dangling ends use the
// geometry's terminal points, control points are mapped to view
// coordinates, and connected ends are placed on the perimeter of the
// terminal toward the neighbouring point. An edge whose end can be neither
// placed nor attached loses its state.
//
// # Navigation
//
// [View.SetCurrentRoot] drills into a group. It is recorded as a
// [CurrentRootChange] and published as an edit, so navigation is undoable.
package view
