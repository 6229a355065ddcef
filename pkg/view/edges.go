package view

import (
	"math"

	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Style keys read by the edge pipeline that have no typed field.
const (
	KeyPerimeterSpacing       style.Key = "perimeterSpacing"
	KeySourcePerimeterSpacing style.Key = "sourcePerimeterSpacing"
	KeyTargetPerimeterSpacing style.Key = "targetPerimeterSpacing"
)

// PerimeterFunc returns the point on the outline of a shape with the given
// bounds that lies toward next.
type PerimeterFunc func(bounds geometry.Rectangle, next geometry.Point, orthogonal bool) geometry.Point

// Built-in perimeters, selected by the perimeter style key.
var defaultPerimeters = map[string]PerimeterFunc{
	"rectangle": geometry.PerimeterPoint,
	"ellipse":   geometry.EllipsePerimeterPoint,
}

// SetPerimeter registers fn under name for this view. A nil fn removes
// the perimeter; terminals using it then connect at their center.
func (v *View) SetPerimeter(name string, fn PerimeterFunc) {
	if fn == nil {
		delete(v.perimeters, name)
		return
	}
	v.perimeters[name] = fn
}

// updateEdgeState computes the absolute points of an edge. Edges that
// cannot be drawn lose their state: a connected end whose terminal has no
// state, or a dangling end without a terminal point.
func (v *View) updateEdgeState(s *CellState, geo *geometry.Geometry) {
	src, trg := v.states[s.VisibleSource], v.states[s.VisibleTarget]
	if (v.model.Terminal(s.Cell, true) != "" && src == nil) ||
		(src == nil && geo.SourcePoint == nil) ||
		(v.model.Terminal(s.Cell, false) != "" && trg == nil) ||
		(trg == nil && geo.TargetPoint == nil) {
		v.Clear(s.Cell, true, true)
		return
	}

	pts := make([]*geometry.Point, 0, len(geo.Points)+2)
	pts = append(pts, v.fixedTerminalPoint(s, src, geo, true))
	for _, p := range geo.Points {
		pts = append(pts, v.controlPoint(s, p))
	}
	pts = append(pts, v.fixedTerminalPoint(s, trg, geo, false))

	// The target end goes first so the source end can aim at it.
	last := len(pts) - 1
	if pts[last] == nil && trg != nil {
		pts[last] = v.floatingTerminalPoint(s, trg, src, pts, false)
	}
	if pts[0] == nil && src != nil {
		pts[0] = v.floatingTerminalPoint(s, src, trg, pts, true)
	}

	if s.Cell != v.currentRoot && (pts[0] == nil || pts[last] == nil) {
		v.Clear(s.Cell, true, true)
		return
	}
	s.AbsolutePoints = make([]geometry.Point, len(pts))
	for i, p := range pts {
		s.AbsolutePoints[i] = *p
	}
	v.updateEdgeBounds(s)
	v.updateEdgeLabelOffset(s, geo)
}

// fixedTerminalPoint returns the absolute terminal point of a dangling
// end, or nil if the end is connected or has no point.
func (v *View) fixedTerminalPoint(s, terminal *CellState, geo *geometry.Geometry, source bool) *geometry.Point {
	if terminal != nil {
		return nil
	}
	p := geo.TerminalPoint(source)
	if p == nil {
		return nil
	}
	return v.controlPoint(s, *p)
}

// controlPoint maps a point in the edge's parent coordinates to view
// coordinates.
func (v *View) controlPoint(s *CellState, p geometry.Point) *geometry.Point {
	return &geometry.Point{
		X: v.scale * (p.X + v.translate.X + s.Origin.X),
		Y: v.scale * (p.Y + v.translate.Y + s.Origin.Y),
	}
}

// floatingTerminalPoint returns the point on the perimeter of start where
// the edge leaves toward its next point.
func (v *View) floatingTerminalPoint(s, start, end *CellState, pts []*geometry.Point, source bool) *geometry.Point {
	next := nextPoint(pts, end, source)
	if next == nil {
		c := start.Center()
		return &c
	}

	alpha := start.Style.Number(style.KeyRotation, 0)
	center := start.Center()
	if alpha != 0 {
		*next = rotate(*next, -alpha, center)
	}

	border := s.Style.Number(KeyPerimeterSpacing, 0)
	if source {
		border += s.Style.Number(KeySourcePerimeterSpacing, 0)
	} else {
		border += s.Style.Number(KeyTargetPerimeterSpacing, 0)
	}
	p := v.perimeterPoint(start, *next, false, border)
	if alpha != 0 {
		p = rotate(p, alpha, center)
	}
	return &p
}

// nextPoint returns the point an edge end aims at: the neighbouring
// absolute point, or the center of the opposite terminal.
func nextPoint(pts []*geometry.Point, opposite *CellState, source bool) *geometry.Point {
	var p *geometry.Point
	if n := len(pts); n >= 2 {
		if source {
			p = pts[1]
		} else {
			p = pts[n-2]
		}
	}
	if p != nil {
		c := *p
		return &c
	}
	if opposite != nil {
		c := opposite.Center()
		return &c
	}
	return nil
}

// perimeterPoint returns the point on the perimeter of terminal toward
// next, or the center of terminal if its perimeter is unknown.
func (v *View) perimeterPoint(terminal *CellState, next geometry.Point, orthogonal bool, border float64) geometry.Point {
	fn := v.perimeters[terminal.Style.Perimeter]
	if fn == nil {
		return terminal.Center()
	}
	bounds := terminal.Bounds()
	if border += terminal.Style.Number(KeyPerimeterSpacing, 0); border != 0 {
		bounds = bounds.Grow(border * v.scale)
	}
	if bounds.Width <= 0 && bounds.Height <= 0 {
		return terminal.Center()
	}
	return fn(bounds, next, orthogonal)
}

// updateEdgeBounds sets segment lengths, the total length and the bounds
// of an edge from its absolute points.
func (v *View) updateEdgeBounds(s *CellState) {
	pts := s.AbsolutePoints
	p0, pe := pts[0], pts[len(pts)-1]
	s.TerminalDistance = p0.Distance(pe)

	s.Segments = make([]float64, 0, len(pts)-1)
	s.Length = 0
	minX, minY, maxX, maxY := p0.X, p0.Y, p0.X, p0.Y
	for i := 1; i < len(pts); i++ {
		seg := pts[i-1].Distance(pts[i])
		s.Segments = append(s.Segments, seg)
		s.Length += seg
		minX, minY = math.Min(minX, pts[i].X), math.Min(minY, pts[i].Y)
		maxX, maxY = math.Max(maxX, pts[i].X), math.Max(maxY, pts[i].Y)
	}

	// Degenerate edges keep a 1x1 box so they stay hit-testable.
	const markerSize = 1
	s.X, s.Y = minX, minY
	s.Width = math.Max(markerSize, maxX-minX)
	s.Height = math.Max(markerSize, maxY-minY)
}

// updateEdgeLabelOffset places the edge label. Relative geometries position
// it along the edge, absolute ones at the midpoint of the terminals plus
// the geometry offset.
func (v *View) updateEdgeLabelOffset(s *CellState, geo *geometry.Geometry) {
	s.AbsoluteOffset = s.Center()
	if len(s.AbsolutePoints) == 0 {
		return
	}
	if geo.Relative {
		s.AbsoluteOffset = v.pointOnEdge(s, geo)
		return
	}
	p0, pe := s.AbsolutePoints[0], s.AbsolutePoints[len(s.AbsolutePoints)-1]
	var off geometry.Point
	if geo.Offset != nil {
		off = *geo.Offset
	}
	s.AbsoluteOffset = geometry.Point{
		X: p0.X + (pe.X-p0.X)/2 + off.X*v.scale,
		Y: p0.Y + (pe.Y-p0.Y)/2 + off.Y*v.scale,
	}
}

// pointOnEdge returns the absolute point for a relative geometry on edge
// state s. geo.X runs from -1 at the source to 1 at the target, geo.Y is
// the orthogonal distance from the edge.
func (v *View) pointOnEdge(s *CellState, geo *geometry.Geometry) geometry.Point {
	p := s.Center()
	if len(s.Segments) == 0 || len(s.AbsolutePoints) < 2 {
		if geo.Offset != nil {
			p = p.Translate(geo.Offset.X, geo.Offset.Y)
		}
		return p
	}

	dist := math.Round((geo.X/2 + 0.5) * s.Length)
	segment := s.Segments[0]
	length := 0.0
	index := 1
	for dist >= math.Round(length+segment) && index < len(s.AbsolutePoints)-1 {
		length += segment
		segment = s.Segments[index]
		index++
	}

	factor, nx, ny := 0.0, 0.0, 0.0
	p0, pe := s.AbsolutePoints[index-1], s.AbsolutePoints[index]
	dx, dy := pe.X-p0.X, pe.Y-p0.Y
	if segment != 0 {
		factor = (dist - length) / segment
		nx, ny = dy/segment, dx/segment
	}
	var off geometry.Point
	if geo.Offset != nil {
		off = *geo.Offset
	}
	return geometry.Point{
		X: p0.X + dx*factor + (nx*geo.Y+off.X)*v.scale,
		Y: p0.Y + dy*factor - (ny*geo.Y-off.Y)*v.scale,
	}
}

// rotate turns p by degrees around c.
func rotate(p geometry.Point, degrees float64, c geometry.Point) geometry.Point {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	x, y := p.X-c.X, p.Y-c.Y
	return geometry.Point{X: x*cos - y*sin + c.X, Y: y*cos + x*sin + c.Y}
}
