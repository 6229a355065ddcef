package model_test

import (
	"fmt"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func Example() {
	m := model.New()
	layer := m.ChildAt(m.Root(), 0)

	m.Events().AddListener(event.Change, func(e *event.Event) {
		edit := e.Payload.(model.EditEvent).Edit
		fmt.Println("changes:", edit.Len())
	})

	a := m.CreateVertex("A", geometry.New(20, 20, 80, 30), style.Style{})
	b := m.CreateVertex("B", geometry.New(200, 150, 80, 30), style.Style{})
	e := m.CreateEdge("E", nil, style.Style{})

	m.Batch(func() {
		m.Add(layer, a, -1)
		m.Add(layer, b, -1)
		m.Add(layer, e, -1)
		m.SetTerminals(e, a, b)
	})

	fmt.Println("outgoing:", m.OutgoingEdges(a))
	fmt.Println("target:", m.Terminal(e, false))
	// Output:
	// changes: 5
	// outgoing: [4]
	// target: 3
}

func ExampleEdit_Undo() {
	m := model.New()
	layer := m.ChildAt(m.Root(), 0)
	v := m.CreateVertex("before", nil, style.Style{})
	m.Add(layer, v, -1)

	var last *model.Edit
	m.Events().AddListener(event.Undo, func(e *event.Event) {
		last = e.Payload.(model.EditEvent).Edit
	})

	m.SetValue(v, "after")
	fmt.Println(m.Value(v))
	last.Undo()
	fmt.Println(m.Value(v))
	last.Redo()
	fmt.Println(m.Value(v))
	// Output:
	// after
	// before
	// after
}
