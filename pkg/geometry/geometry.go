package geometry

import (
	"math"
	"slices"
)

// Point is a position in model or view coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Translate returns p moved by dx, dy.
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Scale returns p with both coordinates multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// SegmentDistanceSq returns the squared distance from p to the segment a-b.
func SegmentDistanceSq(a, b, p Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l))
	}
	ex, ey := a.X+t*dx-p.X, a.Y+t*dy-p.Y
	return ex*ex + ey*ey
}

// Rectangle is an axis-aligned box. Width and Height are expected to be
// non-negative.
type Rectangle struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// CenterX returns the horizontal center of r.
func (r Rectangle) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center of r.
func (r Rectangle) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the center point of r.
func (r Rectangle) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Add returns the smallest rectangle containing both r and o.
func (r Rectangle) Add(o Rectangle) Rectangle {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Grow returns r expanded by amount on every side.
func (r Rectangle) Grow(amount float64) Rectangle {
	return Rectangle{X: r.X - amount, Y: r.Y - amount, Width: r.Width + 2*amount, Height: r.Height + 2*amount}
}

// Contains reports whether (x, y) lies inside r, borders included.
func (r Rectangle) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and o overlap.
func (r Rectangle) Intersects(o Rectangle) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Geometry holds the model-space placement of a cell.
//
// For vertices X, Y, Width and Height give the bounds relative to the parent
// origin. If Relative is set, X and Y are fractions of the parent size for
// vertices, and for edge labels X is the position along the edge in [-1, 1].
// For edges Points lists the control points; SourcePoint and TargetPoint are
// used for dangling ends.
type Geometry struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Relative bool    `json:"relative,omitempty" yaml:"relative,omitempty"`

	Offset      *Point  `json:"offset,omitempty" yaml:"offset,omitempty"`
	Points      []Point `json:"points,omitempty" yaml:"points,omitempty"`
	SourcePoint *Point  `json:"sourcePoint,omitempty" yaml:"sourcePoint,omitempty"`
	TargetPoint *Point  `json:"targetPoint,omitempty" yaml:"targetPoint,omitempty"`
}

// New returns an absolute geometry with the given bounds.
func New(x, y, width, height float64) *Geometry {
	return &Geometry{X: x, Y: y, Width: width, Height: height}
}

// Bounds returns the rectangle part of g.
func (g *Geometry) Bounds() Rectangle {
	return Rectangle{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// Clone returns a deep copy of g. Cloning nil returns nil.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	c := *g
	c.Offset = clonePoint(g.Offset)
	c.SourcePoint = clonePoint(g.SourcePoint)
	c.TargetPoint = clonePoint(g.TargetPoint)
	c.Points = slices.Clone(g.Points)
	return &c
}

// Equal reports whether g and o describe the same geometry.
func (g *Geometry) Equal(o *Geometry) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.X == o.X && g.Y == o.Y && g.Width == o.Width && g.Height == o.Height &&
		g.Relative == o.Relative &&
		pointEqual(g.Offset, o.Offset) &&
		pointEqual(g.SourcePoint, o.SourcePoint) &&
		pointEqual(g.TargetPoint, o.TargetPoint) &&
		slices.Equal(g.Points, o.Points)
}

// TerminalPoint returns the source or target point of a dangling edge end.
func (g *Geometry) TerminalPoint(source bool) *Point {
	if source {
		return g.SourcePoint
	}
	return g.TargetPoint
}

// SetTerminalPoint sets the source or target point in place. Callers that
// hold a geometry owned by a model must clone it first.
func (g *Geometry) SetTerminalPoint(p *Point, source bool) {
	if source {
		g.SourcePoint = clonePoint(p)
	} else {
		g.TargetPoint = clonePoint(p)
	}
}

// Translate moves g by dx, dy in place. Relative geometries keep X and Y
// and only move their terminal and control points.
func (g *Geometry) Translate(dx, dy float64) {
	if !g.Relative {
		g.X += dx
		g.Y += dy
	}
	if g.SourcePoint != nil {
		*g.SourcePoint = g.SourcePoint.Translate(dx, dy)
	}
	if g.TargetPoint != nil {
		*g.TargetPoint = g.TargetPoint.Translate(dx, dy)
	}
	for i := range g.Points {
		g.Points[i] = g.Points[i].Translate(dx, dy)
	}
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func pointEqual(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
