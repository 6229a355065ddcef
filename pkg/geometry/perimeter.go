package geometry

import "math"

// PerimeterPoint returns the point where the line from the center of bounds
// toward next crosses the border of bounds.
//
// If orthogonal is set and next lies within the horizontal or vertical span
// of bounds, the orthogonal projection of next onto the nearest side is
// returned instead. A next equal to the center yields the center.
func PerimeterPoint(bounds Rectangle, next Point, orthogonal bool) Point {
	cx, cy := bounds.CenterX(), bounds.CenterY()
	dx, dy := next.X-cx, next.Y-cy
	if dx == 0 && dy == 0 {
		return Point{X: cx, Y: cy}
	}

	alpha := math.Atan2(dy, dx)
	beta := math.Pi/2 - alpha
	t := math.Atan2(bounds.Height, bounds.Width)

	var p Point
	switch {
	case alpha < -math.Pi+t || alpha > math.Pi-t:
		// left
		p.X = bounds.X
		p.Y = cy - bounds.Width*math.Tan(alpha)/2
	case alpha < -t:
		// top
		p.Y = bounds.Y
		p.X = cx - bounds.Height*math.Tan(beta)/2
	case alpha < t:
		// right
		p.X = bounds.X + bounds.Width
		p.Y = cy + bounds.Width*math.Tan(alpha)/2
	default:
		// bottom
		p.Y = bounds.Y + bounds.Height
		p.X = cx + bounds.Height*math.Tan(beta)/2
	}
	// Axis-aligned rays stay exact.
	if dy == 0 {
		p.Y = cy
	}
	if dx == 0 {
		p.X = cx
	}

	if orthogonal {
		switch {
		case next.X >= bounds.X && next.X <= bounds.X+bounds.Width:
			p.X = next.X
		case next.Y >= bounds.Y && next.Y <= bounds.Y+bounds.Height:
			p.Y = next.Y
		}
		if next.X < bounds.X {
			p.X = bounds.X
		} else if next.X > bounds.X+bounds.Width {
			p.X = bounds.X + bounds.Width
		}
		if next.Y < bounds.Y {
			p.Y = bounds.Y
		} else if next.Y > bounds.Y+bounds.Height {
			p.Y = bounds.Y + bounds.Height
		}
	}
	return p
}

// EllipsePerimeterPoint returns the point where the line from the center of
// the ellipse inscribed in bounds toward next crosses the ellipse.
func EllipsePerimeterPoint(bounds Rectangle, next Point, _ bool) Point {
	a, b := bounds.Width/2, bounds.Height/2
	cx, cy := bounds.X+a, bounds.Y+b
	dx, dy := next.X-cx, next.Y-cy
	switch {
	case dx == 0 && dy == 0:
		return Point{X: cx, Y: cy}
	case dx == 0:
		return Point{X: cx, Y: cy + math.Copysign(b, dy)}
	}

	d := dy / dx
	t := a * b / math.Sqrt(a*a*d*d+b*b)
	x := cx + math.Copysign(t, dx)
	return Point{X: x, Y: cy + d*(x-cx)}
}
