// Package selection implements the set of selected cells of a graph.
//
// Every change is executed as a [Change] and published as an insignificant
// edit with an Undo event on [Model.Events]. An undo manager attached to
// that source records selection changes and replays them while undoing
// model steps, without counting them as steps of their own.
package selection
