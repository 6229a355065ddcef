package graph

// IsValidRoot reports whether id can become the current root of the view:
// a vertex below a layer.
func (g *Graph) IsValidRoot(id string) bool {
	return g.model.Contains(id) && g.model.IsVertex(id) &&
		!g.model.IsRoot(id) && !g.model.IsLayer(id)
}

// EnterGroup makes id the current root and clears the selection. Invalid
// roots are ignored.
func (g *Graph) EnterGroup(id string) {
	if !g.IsValidRoot(id) {
		return
	}
	g.view.SetCurrentRoot(id)
	g.ClearSelection()
}

// ExitGroup moves the current root to the nearest valid ancestor, or back
// to the top level, and selects the group that was left.
func (g *Graph) ExitGroup() {
	current := g.view.CurrentRoot()
	if current == "" {
		return
	}
	root := g.model.Root()
	next := g.model.Parent(current)
	for next != "" && next != root && !g.IsValidRoot(next) && g.model.Parent(next) != root {
		next = g.model.Parent(next)
	}
	if next == "" || next == root || g.model.Parent(next) == root {
		g.view.SetCurrentRoot("")
	} else {
		g.view.SetCurrentRoot(next)
	}
	g.selectIfDisplayed(current)
}

// Home clears the current root and selects the group that was displayed.
func (g *Graph) Home() {
	current := g.view.CurrentRoot()
	if current == "" {
		return
	}
	g.view.SetCurrentRoot("")
	g.selectIfDisplayed(current)
}

func (g *Graph) selectIfDisplayed(id string) {
	if g.view.State(id) != nil {
		g.SetSelectionCells([]string{id})
	}
}
