package layout

import "math"

const epsilon = 1e-9

// rect is an axis-aligned box used internally by placement and clipping.
type rect struct {
	x0, y0, x1, y1 float64
}

func rectAt(x, y, w, h float64) rect {
	return rect{x0: x, y0: y, x1: x + w, y1: y + h}
}

func (r rect) w() float64       { return r.x1 - r.x0 }
func (r rect) h() float64       { return r.y1 - r.y0 }
func (r rect) cx() float64      { return (r.x0 + r.x1) / 2 }
func (r rect) cy() float64      { return (r.y0 + r.y1) / 2 }
func (r rect) empty() bool      { return r.x1-r.x0 <= 0 || r.y1-r.y0 <= 0 }
func (r rect) contains(p Point) bool {
	return p.X >= r.x0-epsilon && p.X <= r.x1+epsilon &&
		p.Y >= r.y0-epsilon && p.Y <= r.y1+epsilon
}

// overlap returns the overlap extent along each axis, or non-positive
// values when the rects are disjoint along that axis.
func (r rect) overlap(o rect) (dx, dy float64) {
	dx = math.Min(r.x1, o.x1) - math.Max(r.x0, o.x0)
	dy = math.Min(r.y1, o.y1) - math.Max(r.y0, o.y0)
	return dx, dy
}

func (r rect) intersects(o rect) bool {
	dx, dy := r.overlap(o)
	return dx > epsilon && dy > epsilon
}

// union grows r to cover o. A zero rect must not be unioned; callers seed
// with the first box.
func (r rect) union(o rect) rect {
	return rect{
		x0: math.Min(r.x0, o.x0),
		y0: math.Min(r.y0, o.y0),
		x1: math.Max(r.x1, o.x1),
		y1: math.Max(r.y1, o.y1),
	}
}

// boundaryToward returns the point where the ray from the rect's center
// toward target crosses the rect boundary. Degenerate rays (target at the
// center) fall back to the right edge midpoint.
func (r rect) boundaryToward(target Point) Point {
	cx, cy := r.cx(), r.cy()
	dx, dy := target.X-cx, target.Y-cy
	if math.Abs(dx) < epsilon && math.Abs(dy) < epsilon {
		return Point{X: r.x1, Y: cy}
	}
	// Scale the direction so the larger normalized component reaches
	// the boundary first.
	tx, ty := math.Inf(1), math.Inf(1)
	if math.Abs(dx) > epsilon {
		tx = (r.w() / 2) / math.Abs(dx)
	}
	if math.Abs(dy) > epsilon {
		ty = (r.h() / 2) / math.Abs(dy)
	}
	t := math.Min(tx, ty)
	return Point{X: cx + dx*t, Y: cy + dy*t}
}

// clipSegment clips the segment a-b against the rect and reports the
// clipped endpoints plus whether any part of the segment lies inside.
// Standard Liang-Barsky parametric clipping.
func (r rect) clipSegment(a, b Point) (Point, Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y

	clip := func(p, q float64) bool {
		if math.Abs(p) < epsilon {
			return q >= -epsilon
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, a.X-r.x0) || !clip(dx, r.x1-a.X) ||
		!clip(-dy, a.Y-r.y0) || !clip(dy, r.y1-a.Y) {
		return Point{}, Point{}, false
	}
	p0 := Point{X: a.X + dx*t0, Y: a.Y + dy*t0}
	p1 := Point{X: a.X + dx*t1, Y: a.Y + dy*t1}
	return p0, p1, true
}

func pathLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}
