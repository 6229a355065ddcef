// Package geometry provides the value types used to place cells: points,
// rectangles and the per-cell [Geometry] record.
//
// # Model and View Coordinates
//
// A [Geometry] is stored in model coordinates, relative to the origin of the
// parent cell. The view turns it into absolute, scaled coordinates when it
// computes a cell state. Geometries owned by a model are treated as
// immutable: callers clone before changing one and hand the copy back to the
// model, which records the old and new values for undo.
//
// # Perimeters
//
// [PerimeterPoint] computes where a floating edge end meets the border of a
// rectangular terminal. It is the only perimeter implemented here; other
// shapes are painted by external collaborators.
package geometry
