package graph

import (
	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
)

// Messages for connections that break a validator setting rather than a
// [Multiplicity].
const (
	ErrDangling         = "edge must connect a source and a target"
	ErrLoop             = "edge must not connect a cell to itself"
	ErrNotConnectable   = "terminal is not connectable"
	ErrAlreadyConnected = "cells are already connected"
	ErrNestedInvalid    = "contains validation errors"
)

// Typed is implemented by cell values that carry a type name and
// attributes for [Multiplicity] matching. Other values match a type by
// their string form.
type Typed interface {
	CellType() string
	Attribute(name string) string
}

// Multiplicity restricts the number of edges a terminal may have and the
// terminals it may connect to.
//
// A rule applies to the source (Source set) or the target end of an edge
// whose terminal value matches Type and, if Attr is set, has Value for
// that attribute. Max is the largest number of edges in that direction;
// a negative Max is unbounded. Neighbors lists the types allowed at the
// other end, or with ForbidNeighbors the types that are not.
type Multiplicity struct {
	Source          bool
	Type            string
	Attr            string
	Value           string
	Min             int
	Max             int
	Neighbors       []string
	ForbidNeighbors bool
	CountError      string
	TypeError       string
}

// matches reports whether value matches typ, and attr=want if attr is set.
func matches(value any, typ, attr, want string) bool {
	switch v := value.(type) {
	case Typed:
		return v.CellType() == typ && (attr == "" || v.Attribute(attr) == want)
	case string:
		return attr == "" && v == typ
	}
	return false
}

func (r Multiplicity) appliesTo(value any) bool {
	return matches(value, r.Type, r.Attr, r.Value)
}

// checkEdge returns the errors of r for a new or reconnected edge.
// sourceOut and targetIn count the existing edges of the terminals,
// excluding the edge itself.
func (r Multiplicity) checkEdge(m *model.Model, source, target string, sourceOut, targetIn int) []string {
	end, other, count := target, source, targetIn
	if r.Source {
		end, other, count = source, target, sourceOut
	}
	if !r.appliesTo(m.Value(end)) {
		return nil
	}
	var errs []string
	if r.CountError != "" && r.Max >= 0 && count >= r.Max {
		errs = append(errs, r.CountError)
	}
	if r.TypeError != "" && len(r.Neighbors) > 0 && !r.neighborAllowed(m.Value(other)) {
		errs = append(errs, r.TypeError)
	}
	return errs
}

func (r Multiplicity) neighborAllowed(value any) bool {
	listed := false
	for _, n := range r.Neighbors {
		if matches(value, n, "", "") {
			listed = true
			break
		}
	}
	return listed != r.ForbidNeighbors
}

// checkCell returns the count error of r for a cell with out outgoing and
// in incoming edges.
func (r Multiplicity) checkCell(value any, out, in int) []string {
	if r.CountError == "" || !r.appliesTo(value) {
		return nil
	}
	n := in
	if r.Source {
		n = out
	}
	if n < r.Min || (r.Max >= 0 && n > r.Max) {
		return []string{r.CountError}
	}
	return nil
}

// Validator checks edges and cells against connection settings and
// multiplicities.
type Validator struct {
	AllowDanglingEdges bool
	AllowLoops         bool
	Multigraph         bool

	model  *model.Model
	rules  []Multiplicity
	events *event.Source
}

// NewValidator returns a validator over m that allows dangling edges and
// parallel edges but no loops.
func NewValidator(m *model.Model, rules ...Multiplicity) *Validator {
	v := &Validator{
		AllowDanglingEdges: true,
		Multigraph:         true,
		model:              m,
		rules:              rules,
	}
	v.events = event.NewSource(v)
	return v
}

// Events returns the event source firing Validated.
func (v *Validator) Events() *event.Source { return v.events }

// Multiplicities returns the configured rules.
func (v *Validator) Multiplicities() []Multiplicity { return v.rules }

// ValidateEdge returns the errors of connecting edge from source to target.
// edge may be "" for a connection that does not exist yet. It returns nil
// if the connection is valid.
func (v *Validator) ValidateEdge(edge, source, target string) []string {
	if !v.AllowDanglingEdges && (source == "" || target == "") {
		return []string{ErrDangling}
	}
	if edge != "" && v.model.Terminal(edge, true) == "" && v.model.Terminal(edge, false) == "" {
		return nil
	}
	if !v.AllowLoops && source != "" && source == target {
		return []string{ErrLoop}
	}
	if (source != "" && !v.model.IsConnectable(source)) || (target != "" && !v.model.IsConnectable(target)) {
		return []string{ErrNotConnectable}
	}
	if source == "" || target == "" {
		return nil
	}

	var errs []string
	if !v.Multigraph {
		between := v.model.EdgesBetween(source, target, true)
		if len(between) > 1 || (len(between) == 1 && between[0] != edge) {
			errs = append(errs, ErrAlreadyConnected)
		}
	}
	sourceOut := v.directedEdgeCount(source, true, edge)
	targetIn := v.directedEdgeCount(target, false, edge)
	for _, r := range v.rules {
		errs = append(errs, r.checkEdge(v.model, source, target, sourceOut, targetIn)...)
	}
	return errs
}

// directedEdgeCount counts the edges of id that have id as source (out) or
// target, ignoring the edge ignored.
func (v *Validator) directedEdgeCount(id string, out bool, ignored string) int {
	n := 0
	for _, e := range v.model.ConnectedEdges(id) {
		if e != ignored && v.model.Terminal(e, out) == id {
			n++
		}
	}
	return n
}

// ValidateCell returns the multiplicity count errors of id.
func (v *Validator) ValidateCell(id string) []string {
	out := v.directedEdgeCount(id, true, "")
	in := v.directedEdgeCount(id, false, "")
	var errs []string
	for _, r := range v.rules {
		errs = append(errs, r.checkCell(v.model.Value(id), out, in)...)
	}
	return errs
}

// ValidateGraph validates every cell below the model root and fires
// Validated. Collapsed cells whose descendants have errors report
// [ErrNestedInvalid]. The result maps cell IDs to their errors and is
// empty for a valid graph.
func (v *Validator) ValidateGraph() map[string][]string {
	errs := make(map[string][]string)
	v.validate(v.model.Root(), errs)
	v.events.Fire(event.Validated, ValidationEvent{Errors: errs})
	return errs
}

// validate records the errors below id and reports whether there were
// any.
func (v *Validator) validate(id string, errs map[string][]string) bool {
	invalid := false
	for _, child := range v.model.Children(id) {
		var found []string
		if v.validate(child, errs) {
			invalid = true
			if v.model.IsCollapsed(child) {
				found = append(found, ErrNestedInvalid)
			}
		}
		if v.model.IsEdge(child) {
			found = append(found, v.ValidateEdge(child, v.model.Terminal(child, true), v.model.Terminal(child, false))...)
		}
		found = append(found, v.ValidateCell(child)...)
		if len(found) > 0 {
			errs[child] = found
			invalid = true
		}
	}
	return invalid
}
