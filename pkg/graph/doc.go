// Package graph is the facade over a cell model and its view.
//
// A [Graph] owns a [model.Model], a [view.View] derived from it, the
// selection and an undo history. Every committed model edit flows back
// into the graph, which invalidates the affected states, prunes the
// selection and revalidates the view before the mutating call returns:
//
//	g := graph.New()
//	g.Batch(func() {
//	    a := g.InsertVertex("", "A", 20, 20, 80, 30, style.Style{})
//	    b := g.InsertVertex("", "B", 200, 150, 80, 30, style.Style{})
//	    g.InsertEdge("", nil, a, b, style.Style{})
//	})
//	g.Undo() // removes all three cells
//
// # Capabilities
//
// Features beyond cell insertion, removal and navigation are separate
// types that see only what they need:
//
//   - [Editor] runs in-place label editing
//   - [Grouper] groups, ungroups and reorders cells
//   - [Swimlanes] finds swimlane containers and their header sizes
//   - [Validator] checks connections against [Multiplicity] rules
//
// # Events
//
// Graph level events are fired on [Graph.Events] with the payload types
// in events.go. Model, view and selection keep their own event sources.
package graph
