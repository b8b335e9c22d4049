package layout

import (
	"math"

	"sheetpress/pkg/sheet"
)

// contentPadMM keeps content off the frame line inside the drawing area.
const contentPadMM = 5.0

// mmBox is a node box converted to content millimetres (origin at the
// content extent's top-left, Y down).
type mmBox struct {
	nodeBox nodeBox
	r       rect
}

// mmLabel is a free label in content millimetres.
type mmLabel struct {
	text string
	at   Point
}

// tiler slices the content area into page-sized tiles swept left to right,
// then top to bottom. With a single tile the content is centered on the
// sheet; with several, tiles abut so coordinates stay continuous across
// page boundaries.
type tiler struct {
	tileW, tileH float64
	cols, rows   int
	centerX      float64 // centering offsets, single-tile only
	centerY      float64
}

func newTiler(contentW, contentH, usableW, usableH float64) tiler {
	t := tiler{tileW: usableW, tileH: usableH, cols: 1, rows: 1}
	if contentW > usableW+epsilon {
		t.cols = int(math.Ceil((contentW - epsilon) / usableW))
	}
	if contentH > usableH+epsilon {
		t.rows = int(math.Ceil((contentH - epsilon) / usableH))
	}
	if t.cols == 1 && t.rows == 1 {
		t.centerX = (usableW - contentW) / 2
		t.centerY = (usableH - contentH) / 2
		if t.centerX < 0 {
			t.centerX = 0
		}
		if t.centerY < 0 {
			t.centerY = 0
		}
	}
	return t
}

// index maps a content coordinate to a tile index along one axis. Points
// exactly on a shared tile boundary belong to the lesser tile.
func tileIndex(v, size float64, count int) int {
	idx := int(math.Floor(v / size))
	if idx > 0 && math.Abs(v-float64(idx)*size) < epsilon {
		idx--
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= count {
		idx = count - 1
	}
	return idx
}

func (t tiler) tileOf(p Point) (col, row int) {
	return tileIndex(p.X, t.tileW, t.cols), tileIndex(p.Y, t.tileH, t.rows)
}

func (t tiler) tileRect(col, row int) rect {
	return rectAt(float64(col)*t.tileW, float64(row)*t.tileH, t.tileW, t.tileH)
}

// toPage converts a content point to page coordinates for a given tile.
// Page coordinates are millimetres from the drawing area's top-left.
func (t tiler) toPage(p Point, col, row int) Point {
	return Point{
		X: p.X - float64(col)*t.tileW + contentPadMM + t.centerX,
		Y: p.Y - float64(row)*t.tileH + contentPadMM + t.centerY,
	}
}

// pagePlan is one tile's collected content before final page assembly.
type pagePlan struct {
	col, row int
	nodes    []mmBox
	conns    []clippedPath
	labels   []mmLabel
}

type clippedPath struct {
	path        routedPath
	points      []Point // content mm
	withLabel   bool
	fromCutTile int // linear tile index of the neighbour, -1 if none
	toCutTile   int
}

// paginate distributes content over tiles and assembles the final pages.
// Empty tiles are dropped; surviving tiles are numbered in sweep order.
func paginate(boxes []mmBox, paths []routedPath, labels []mmLabel, t tiler, format sheet.Format, scaleN int, title string) *Result {
	linear := func(col, row int) int { return row*t.cols + col }
	plans := make(map[int]*pagePlan)
	plan := func(col, row int) *pagePlan {
		k := linear(col, row)
		p, ok := plans[k]
		if !ok {
			p = &pagePlan{col: col, row: row}
			plans[k] = p
		}
		return p
	}

	for _, b := range boxes {
		col, row := t.tileOf(Point{X: b.r.cx(), Y: b.r.cy()})
		plan(col, row).nodes = append(plan(col, row).nodes, b)
	}
	for _, l := range labels {
		col, row := t.tileOf(l.at)
		plan(col, row).labels = append(plan(col, row).labels, l)
	}
	for _, p := range paths {
		distributePath(p, t, plan, linear)
	}

	// Sweep order over non-empty tiles.
	pageOf := make(map[int]int) // linear tile -> 1-based page number
	var order []int
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			k := linear(col, row)
			if _, ok := plans[k]; ok {
				order = append(order, k)
				pageOf[k] = len(order)
			}
		}
	}
	if len(order) == 0 {
		// An empty scene still publishes one blank sheet.
		order = append(order, 0)
		plans[0] = &pagePlan{}
		pageOf[0] = 1
	}

	res := &Result{Format: format, Scale: scaleN, Title: title}
	for _, k := range order {
		res.Pages = append(res.Pages, buildPage(plans[k], t, pageOf, format, scaleN))
	}
	total := len(res.Pages)
	for i := range res.Pages {
		res.Pages[i].Index = i + 1
		res.Pages[i].Total = total
	}
	return res
}

// distributePath clips a routed path against every tile it crosses and
// records continuation neighbours at each cut end. The neighbour is found
// by probing just beyond the cut along the path, so corner exits resolve
// the same way every run.
func distributePath(p routedPath, t tiler, plan func(col, row int) *pagePlan, linear func(col, row int) int) {
	labelCol, labelRow := t.tileOf(p.labelAt)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			tile := t.tileRect(col, row)
			pts, startCut, endCut := clipPolyline(p.points, tile)
			if len(pts) < 2 {
				continue
			}
			cp := clippedPath{path: p, points: pts, fromCutTile: -1, toCutTile: -1}
			if startCut {
				cp.fromCutTile = neighbourTile(p.points, pts[0], t, linear, false)
			}
			if endCut {
				cp.toCutTile = neighbourTile(p.points, pts[len(pts)-1], t, linear, true)
			}
			if p.label != "" && col == labelCol && row == labelRow {
				cp.withLabel = true
			}
			pl := plan(col, row)
			pl.conns = append(pl.conns, cp)
		}
	}
}

// clipPolyline clips a polyline to a rect, returning the first contiguous
// run inside it. startCut/endCut report whether the run's ends were
// produced by clipping rather than being original route endpoints.
func clipPolyline(pts []Point, r rect) (out []Point, startCut, endCut bool) {
	for i := 1; i < len(pts); i++ {
		a, b, ok := r.clipSegment(pts[i-1], pts[i])
		if !ok || samePoint(a, b) {
			if len(out) > 0 {
				break // run ended
			}
			continue
		}
		if len(out) == 0 {
			out = append(out, a)
		} else if !samePoint(out[len(out)-1], a) {
			// The polyline left the rect and re-entered; keep the
			// first run only.
			break
		}
		out = append(out, b)
	}
	if len(out) < 2 {
		return nil, false, false
	}
	startCut = !samePoint(out[0], pts[0])
	endCut = !samePoint(out[len(out)-1], pts[len(pts)-1])
	return out, startCut, endCut
}

// neighbourTile finds the tile holding the path portion just beyond a cut
// point: forward of it for an end cut, behind it for a start cut.
func neighbourTile(pts []Point, cut Point, t tiler, linear func(col, row int) int, forward bool) int {
	const probe = 1e-4
	// Locate the segment containing the cut and step along it.
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		if seg < epsilon {
			continue
		}
		// Projection parameter of the cut on this segment.
		u := ((cut.X-a.X)*(b.X-a.X) + (cut.Y-a.Y)*(b.Y-a.Y)) / (seg * seg)
		if u < -probe || u > 1+probe {
			continue
		}
		px := a.X + (b.X-a.X)*u
		py := a.Y + (b.Y-a.Y)*u
		if math.Hypot(px-cut.X, py-cut.Y) > 1e-3 {
			continue
		}
		dir := 1.0
		if !forward {
			dir = -1
		}
		q := Point{
			X: cut.X + dir*(b.X-a.X)/seg*probe*t.tileW,
			Y: cut.Y + dir*(b.Y-a.Y)/seg*probe*t.tileH,
		}
		col, row := t.tileOf(q)
		return linear(col, row)
	}
	col, row := t.tileOf(cut)
	return linear(col, row)
}

// buildPage converts one tile's plan into a final Page in page-space
// millimetres. Node boxes straddling a tile edge are nudged fully inside
// so every node honours the drawing area; the clamp can land such a node
// on a neighbour that was clear in scene space, so a page-local repair
// pass runs afterwards.
func buildPage(p *pagePlan, t tiler, pageOf map[int]int, format sheet.Format, scaleN int) Page {
	usableW := format.DrawingWidthMM() - 2*contentPadMM
	usableH := format.DrawingHeightMM() - 2*contentPadMM

	page := Page{Format: format, Scale: scaleN}
	for _, b := range p.nodes {
		tl := t.toPage(Point{X: b.r.x0, Y: b.r.y0}, p.col, p.row)
		x := clampSpan(tl.X, b.r.w(), contentPadMM, contentPadMM+usableW)
		y := clampSpan(tl.Y, b.r.h(), contentPadMM, contentPadMM+usableH)
		page.Nodes = append(page.Nodes, PlacedNode{
			ID:    b.nodeBox.id,
			Kind:  b.nodeBox.kind,
			Attrs: b.nodeBox.attrs,
			X:     x,
			Y:     y,
			W:     b.r.w(),
			H:     b.r.h(),
		})
	}
	repairPageOverlaps(page.Nodes, contentPadMM, contentPadMM+usableW, contentPadMM+usableH)
	for _, cp := range p.conns {
		rc := RoutedConnector{
			From:     cp.path.from,
			To:       cp.path.to,
			Directed: cp.path.directed,
		}
		if cp.withLabel {
			rc.Label = cp.path.label
		}
		for _, pt := range cp.points {
			rc.Points = append(rc.Points, t.toPage(pt, p.col, p.row))
		}
		if cp.fromCutTile >= 0 {
			rc.ContinuesFrom = pageOf[cp.fromCutTile]
		}
		if cp.toCutTile >= 0 {
			rc.ContinuesTo = pageOf[cp.toCutTile]
		}
		page.Connectors = append(page.Connectors, rc)
	}
	for _, l := range p.labels {
		at := t.toPage(l.at, p.col, p.row)
		page.Labels = append(page.Labels, PlacedLabel{Text: l.text, X: at.X, Y: at.Y})
	}
	return page
}

// pageRepairGapMM is the clearance left between node boxes nudged apart
// on a page.
const pageRepairGapMM = 1.0

// repairPageOverlaps separates node boxes that collide after edge
// clamping. Pairs are visited in ID order (the slice is built in that
// order), the later node moves along the axis of least overlap, past the
// anchor when the drawing area has room there and to the near side
// otherwise. Moves never leave [lo, hiX]×[lo, hiY]; a pair with no room
// on either side stays put and verifyFit reports the page.
func repairPageOverlaps(nodes []PlacedNode, lo, hiX, hiY float64) {
	maxSweeps := len(nodes) + 2
	for sweep := 0; sweep < maxSweeps; sweep++ {
		moved := false
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a := rectAt(nodes[i].X, nodes[i].Y, nodes[i].W, nodes[i].H)
				b := rectAt(nodes[j].X, nodes[j].Y, nodes[j].W, nodes[j].H)
				dx, dy := a.overlap(b)
				if dx <= epsilon || dy <= epsilon {
					continue
				}
				if dx <= dy {
					if s, ok := shiftAside(nodes[j].W, a.x0, a.x1, lo, hiX); ok {
						nodes[j].X = s
						moved = true
					}
				} else {
					if s, ok := shiftAside(nodes[j].H, a.y0, a.y1, lo, hiY); ok {
						nodes[j].Y = s
						moved = true
					}
				}
			}
		}
		if !moved {
			return
		}
	}
}

// shiftAside places a span of the given width just clear of [a0, a1],
// preferring the far side, within [lo, hi]. ok is false when neither
// side has room.
func shiftAside(width, a0, a1, lo, hi float64) (float64, bool) {
	if a1+pageRepairGapMM+width <= hi+epsilon {
		return a1 + pageRepairGapMM, true
	}
	if a0-pageRepairGapMM-width >= lo-epsilon {
		return a0 - pageRepairGapMM - width, true
	}
	return 0, false
}

// clampSpan shifts an interval of the given width minimally so it lies
// within [lo, hi]. Oversized spans pin to lo; size checks upstream keep
// that from happening in practice.
func clampSpan(start, width, lo, hi float64) float64 {
	if start < lo {
		return lo
	}
	if start+width > hi {
		s := hi - width
		if s < lo {
			return lo
		}
		return s
	}
	return start
}
