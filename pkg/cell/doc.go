// Package cell defines [Cell], the single entity type of a graph model.
//
// Vertices, edges, layers and groups are all cells, told apart by flags.
// Cells never hold pointers to each other: parent, children, terminals and
// connected edges are stored as IDs and resolved through the model that owns
// the cell. This keeps the containment tree and the many-to-many terminal
// links free of reference cycles and makes cells cheap to snapshot.
//
// The helpers on [Cell] that edit link slices (InsertChild, RemoveEdge, ...)
// are building blocks for the model package. Code outside the model should
// change cells through model operations so every change is recorded.
package cell
