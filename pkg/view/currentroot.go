package view

import (
	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
)

// SetCurrentRoot drills the view into root, or back out to the model root
// for "". The change is executed and published as a significant edit with
// an Undo event, so undo managers attached to [View.Events] can step
// through navigation.
func (v *View) SetCurrentRoot(root string) {
	if v.currentRoot == root {
		return
	}
	ch := NewCurrentRootChange(v, root)
	ch.Execute()
	edit := model.NewEdit(v.events, true)
	edit.Add(ch)
	v.events.Fire(event.Undo, model.EditEvent{Edit: edit})
}

// CurrentRootChange switches the current root of a view. Executing it
// swaps Root and Previous.
//
// Whether the switch goes up (toward the model root) or down is decided
// once from the ancestors of the current root when the change is created,
// and flipped after every execution. Executing a change against a view
// whose current root was moved by other means therefore picks the wrong
// direction; the states are rebuilt either way.
type CurrentRootChange struct {
	View     *View
	Root     string
	Previous string

	up bool
}

// NewCurrentRootChange returns a change that makes root the current root
// of v.
func NewCurrentRootChange(v *View, root string) *CurrentRootChange {
	c := &CurrentRootChange{View: v, Root: root, Previous: root, up: root == ""}
	if !c.up {
		for tmp := v.currentRoot; tmp != ""; tmp = v.model.Parent(tmp) {
			if tmp == root {
				c.up = true
				break
			}
		}
	}
	return c
}

// IsUp reports whether the next execution moves toward the model root.
func (c *CurrentRootChange) IsUp() bool { return c.up }

// Execute implements [model.Change]. Going up clears and validates the
// view, going down refreshes it. Up or Down fires afterwards.
func (c *CurrentRootChange) Execute() {
	v := c.View
	prev := v.currentRoot
	v.currentRoot = c.Previous
	c.Previous = prev

	if t := v.host.TranslateForRoot(v.currentRoot); t != nil {
		v.translate = geometry.Point{X: -t.X, Y: -t.Y}
	}

	name := event.Down
	if c.up {
		name = event.Up
		v.Clear(v.currentRoot, true, true)
		v.Validate("")
	} else {
		v.Refresh()
	}
	v.events.Fire(name, RootEvent{Root: v.currentRoot, Previous: c.Previous})
	c.up = !c.up
}

// Refs implements the reference lookup used by undo managers.
func (c *CurrentRootChange) Refs() []string {
	var out []string
	for _, id := range []string{c.Root, c.Previous} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
