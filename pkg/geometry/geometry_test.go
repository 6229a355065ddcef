package geometry

import (
	"math"
	"testing"
)

func TestRectangleAdd(t *testing.T) {
	a := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rectangle{X: 20, Y: -5, Width: 5, Height: 5}
	got := a.Add(b)
	want := Rectangle{X: 0, Y: -5, Width: 25, Height: 15}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func TestRectangleContainsIntersects(t *testing.T) {
	r := Rectangle{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 15, 15, true},
		{"corner", 10, 10, true},
		{"far corner", 30, 20, true},
		{"left", 9, 15, false},
		{"below", 15, 21, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if !r.Intersects(Rectangle{X: 25, Y: 5, Width: 10, Height: 10}) {
		t.Error("expected overlapping rectangles to intersect")
	}
	if r.Intersects(Rectangle{X: 31, Y: 10, Width: 5, Height: 5}) {
		t.Error("expected disjoint rectangles not to intersect")
	}
}

func TestGeometryCloneIsDeep(t *testing.T) {
	g := New(1, 2, 3, 4)
	g.Points = []Point{{X: 1, Y: 1}}
	g.SourcePoint = &Point{X: 5, Y: 5}

	c := g.Clone()
	if !c.Equal(g) {
		t.Fatalf("clone differs: %+v vs %+v", c, g)
	}
	c.Points[0].X = 99
	c.SourcePoint.X = 99
	if g.Points[0].X != 1 || g.SourcePoint.X != 5 {
		t.Error("mutating the clone changed the original")
	}
	if c.Equal(g) {
		t.Error("Equal should report the mutated clone as different")
	}

	var nilGeo *Geometry
	if nilGeo.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
	if !nilGeo.Equal(nil) {
		t.Error("nil geometries should be equal")
	}
}

func TestGeometryTranslate(t *testing.T) {
	g := New(10, 10, 5, 5)
	g.Points = []Point{{X: 0, Y: 0}}
	g.TargetPoint = &Point{X: 1, Y: 1}
	g.Translate(5, -5)

	if g.X != 15 || g.Y != 5 {
		t.Errorf("position = (%v, %v), want (15, 5)", g.X, g.Y)
	}
	if g.Points[0] != (Point{X: 5, Y: -5}) {
		t.Errorf("control point = %+v", g.Points[0])
	}
	if *g.TargetPoint != (Point{X: 6, Y: -4}) {
		t.Errorf("target point = %+v", *g.TargetPoint)
	}

	rel := &Geometry{X: 0.5, Y: 0.5, Relative: true}
	rel.Translate(100, 100)
	if rel.X != 0.5 || rel.Y != 0.5 {
		t.Error("relative geometry must not move its position")
	}
}

func TestPerimeterPoint(t *testing.T) {
	bounds := Rectangle{X: 20, Y: 20, Width: 80, Height: 30}
	tests := []struct {
		name string
		next Point
		want Point
	}{
		{"right", Point{X: 200, Y: 35}, Point{X: 100, Y: 35}},
		{"left", Point{X: -100, Y: 35}, Point{X: 20, Y: 35}},
		{"top", Point{X: 60, Y: -100}, Point{X: 60, Y: 20}},
		{"bottom", Point{X: 60, Y: 200}, Point{X: 60, Y: 50}},
		{"center", Point{X: 60, Y: 35}, Point{X: 60, Y: 35}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerimeterPoint(bounds, tt.next, false)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("PerimeterPoint = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPerimeterPointDiagonal(t *testing.T) {
	bounds := Rectangle{X: 200, Y: 150, Width: 80, Height: 30}
	got := PerimeterPoint(bounds, Point{X: 60, Y: 35}, false)
	if math.Abs(got.Y-150) > 1e-9 {
		t.Errorf("y = %v, want top border 150", got.Y)
	}
	if got.X < 200 || got.X > 280 {
		t.Errorf("x = %v outside the top border", got.X)
	}
}

func TestEllipsePerimeterPoint(t *testing.T) {
	bounds := Rectangle{X: 0, Y: 0, Width: 100, Height: 50}
	tests := []struct {
		name string
		next Point
		want Point
	}{
		{"right", Point{X: 300, Y: 25}, Point{X: 100, Y: 25}},
		{"left", Point{X: -300, Y: 25}, Point{X: 0, Y: 25}},
		{"below", Point{X: 50, Y: 300}, Point{X: 50, Y: 50}},
		{"above", Point{X: 50, Y: -300}, Point{X: 50, Y: 0}},
		{"center", Point{X: 50, Y: 25}, Point{X: 50, Y: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EllipsePerimeterPoint(bounds, tt.next, false)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("EllipsePerimeterPoint = %+v, want %+v", got, tt.want)
			}
		})
	}

	got := EllipsePerimeterPoint(bounds, Point{X: 150, Y: 125}, false)
	if v := (got.X-50)*(got.X-50)/2500 + (got.Y-25)*(got.Y-25)/625; math.Abs(v-1) > 1e-9 {
		t.Errorf("diagonal point %+v is not on the ellipse", got)
	}
}

func TestSegmentDistanceSq(t *testing.T) {
	a, b := Point{X: 0, Y: 0}, Point{X: 10, Y: 0}
	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"above middle", Point{X: 5, Y: 3}, 9},
		{"before start", Point{X: -3, Y: 4}, 25},
		{"past end", Point{X: 13, Y: 0}, 9},
		{"on segment", Point{X: 7, Y: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentDistanceSq(a, b, tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SegmentDistanceSq = %v, want %v", got, tt.want)
			}
		})
	}
	if got := SegmentDistanceSq(a, a, Point{X: 3, Y: 4}); got != 25 {
		t.Errorf("degenerate segment = %v, want 25", got)
	}
}
