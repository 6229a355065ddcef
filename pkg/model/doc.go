// Package model implements the graph data model: a tree of cells, the
// undoable changes that mutate it and the transactions that group those
// changes into edits.
//
// # Cells and IDs
//
// A [Model] keeps every cell in a table keyed by ID. New cells are
// registered detached ([Model.CreateVertex], [Model.CreateEdge],
// [Model.Register]) and become part of the graph when added under a cell
// that is reachable from the root:
//
//	m := model.New()
//	layer := m.ChildAt(m.Root(), 0)
//	a := m.CreateVertex("A", geometry.New(20, 20, 80, 30), style.Style{})
//	b := m.CreateVertex("B", geometry.New(200, 150, 80, 30), style.Style{})
//	e := m.CreateEdge(nil, nil, style.Style{})
//	m.Batch(func() {
//	    m.Add(layer, a, -1)
//	    m.Add(layer, b, -1)
//	    m.Add(layer, e, -1)
//	    m.SetTerminals(e, a, b)
//	})
//
// IDs come from a sequential counter ("0", "1", ...) with an optional
// prefix and postfix, or from an [IDGenerator] such as [UUIDGenerator].
// Sequential IDs are never reused.
//
// # Changes
//
// Every mutation is a [Change]. Each change holds the value to apply and,
// once executed, the value it replaced; executing it again swaps them back.
// Undo and redo are therefore the same operation run in opposite order over
// an [Edit].
//
// The low level xForCellChanged methods apply a value and return the old
// one. They are what changes call; application code uses the Set methods,
// [Model.Add] and [Model.Remove], which create and execute changes.
//
// # Transactions
//
// [Model.BeginUpdate] and [Model.EndUpdate] nest. Changes executed while an
// update is open are collected into the current edit; the outermost
// EndUpdate fires one Change event carrying the whole edit and then an Undo
// event for undo managers. [Model.Batch] wraps a function in an update.
//
// # Concurrency
//
// A model is not safe for concurrent use. Listeners run synchronously on
// the goroutine that made the change.
package model
