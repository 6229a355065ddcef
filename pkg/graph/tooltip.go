package graph

// TooltipProvider returns the tooltip text of a cell.
type TooltipProvider interface {
	Tooltip(id string) string
}

// TooltipFunc adapts a function to [TooltipProvider].
type TooltipFunc func(id string) string

// Tooltip calls f(id).
func (f TooltipFunc) Tooltip(id string) string { return f(id) }
