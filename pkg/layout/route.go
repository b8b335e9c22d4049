package layout

import (
	"math"

	"sheetpress/pkg/scene"
)

// routedPath is a connector route over the full content area (page
// millimetres, before pagination clipping). labelAt anchors the optional
// text label at the route midpoint.
type routedPath struct {
	from, to string
	directed bool
	label    string
	points   []Point
	labelAt  Point
}

// labelOffsetMM shifts connector labels off the line, perpendicular at the
// route midpoint.
const labelOffsetMM = 2.0

// routeConnectors computes a path for every connector in declaration
// order. Geometry is resolved against the already-converted node rects.
func routeConnectors(conns []scene.Connector, rects map[string]rect) []routedPath {
	paths := make([]routedPath, 0, len(conns))
	for _, c := range conns {
		a, b := rects[c.From], rects[c.To]
		var pts []Point
		switch c.Route {
		case scene.RouteOrthogonal:
			pts = routeOrthogonal(a, b, c.From <= c.To)
		default:
			pts = routeStraight(a, b)
		}
		p := routedPath{
			from:     c.From,
			to:       c.To,
			directed: c.Directed,
			label:    c.Label,
			points:   pts,
		}
		if c.Label != "" {
			p.labelAt = labelAnchor(pts)
		}
		paths = append(paths, p)
	}
	return paths
}

// routeStraight connects the nearest boundary points of the two node
// boxes: each endpoint is where the center-to-center ray leaves its box.
func routeStraight(a, b rect) []Point {
	pa := a.boundaryToward(Point{X: b.cx(), Y: b.cy()})
	pb := b.boundaryToward(Point{X: a.cx(), Y: a.cy()})
	return []Point{pa, pb}
}

// routeOrthogonal builds an axis-aligned route of minimal total length.
// Aligned boxes get a single straight segment; otherwise the two L-shaped
// candidates (horizontal-first and vertical-first) are compared and length
// ties fall back to the caller's preference, derived from endpoint
// identifier order so reruns agree.
func routeOrthogonal(a, b rect, preferHorizontal bool) []Point {
	adx := math.Abs(b.cx() - a.cx())
	ady := math.Abs(b.cy() - a.cy())
	if adx < epsilon || ady < epsilon {
		return routeStraight(a, b)
	}

	hFirst := lRoute(a, b, true)
	vFirst := lRoute(a, b, false)
	lh, lv := pathLength(hFirst), pathLength(vFirst)
	switch {
	case math.Abs(lh-lv) < epsilon:
		if preferHorizontal {
			return hFirst
		}
		return vFirst
	case lh < lv:
		return hFirst
	default:
		return vFirst
	}
}

// lRoute builds one L-shaped candidate. horizontalFirst leaves a through a
// vertical edge and enters b through a horizontal edge; the bend sits at
// the shared corner of the two legs.
func lRoute(a, b rect, horizontalFirst bool) []Point {
	var start, bend, end Point
	if horizontalFirst {
		bend = Point{X: b.cx(), Y: a.cy()}
		if b.cx() > a.cx() {
			start = Point{X: a.x1, Y: a.cy()}
		} else {
			start = Point{X: a.x0, Y: a.cy()}
		}
		if a.cy() > b.cy() {
			end = Point{X: b.cx(), Y: b.y1}
		} else {
			end = Point{X: b.cx(), Y: b.y0}
		}
	} else {
		bend = Point{X: a.cx(), Y: b.cy()}
		if b.cy() > a.cy() {
			start = Point{X: a.cx(), Y: a.y1}
		} else {
			start = Point{X: a.cx(), Y: a.y0}
		}
		if a.cx() > b.cx() {
			end = Point{X: b.x1, Y: b.cy()}
		} else {
			end = Point{X: b.x0, Y: b.cy()}
		}
	}
	return []Point{start, bend, end}
}

// labelAnchor places a connector label at the arc-length midpoint of the
// route, offset perpendicular to the local segment direction.
func labelAnchor(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	half := pathLength(pts) / 2
	for i := 1; i < len(pts); i++ {
		seg := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if seg < epsilon {
			continue
		}
		if half <= seg {
			t := half / seg
			mx := pts[i-1].X + (pts[i].X-pts[i-1].X)*t
			my := pts[i-1].Y + (pts[i].Y-pts[i-1].Y)*t
			// Unit normal of the segment, pointing to its left.
			nx := -(pts[i].Y - pts[i-1].Y) / seg
			ny := (pts[i].X - pts[i-1].X) / seg
			return Point{X: mx + nx*labelOffsetMM, Y: my + ny*labelOffsetMM}
		}
		half -= seg
	}
	return pts[len(pts)-1]
}
