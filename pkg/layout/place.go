package layout

import (
	"math"

	"sheetpress/pkg/scene"
)

// nodeBox is a node's working geometry in scene units. Scene space is
// metric with Y growing upward; x/y hold the box center. Page conversion
// flips the axis later.
type nodeBox struct {
	id    string
	kind  string
	attrs map[string]string
	x, y  float64
	w, h  float64
}

func (b nodeBox) rect() rect {
	return rectAt(b.x-b.w/2, b.y-b.h/2, b.w, b.h)
}

// gridGapFactor sets the free spacing between grid cells relative to the
// largest node dimension.
const gridGapFactor = 0.5

// placeNodes resolves every node to a concrete center position. Nodes with
// declared coordinates keep them; the rest are arranged on a uniform grid
// in stable ID order, row-major, below any declared content. The returned
// slice is ordered by node ID.
func placeNodes(s *scene.Scene) []nodeBox {
	nodes := s.Nodes() // sorted by ID
	boxes := make([]nodeBox, 0, len(nodes))

	var free []int
	var maxW, maxH float64
	havePlaced := false
	var placedExtent rect

	for _, n := range nodes {
		b := nodeBox{id: n.ID, kind: n.Kind, attrs: n.Attrs, w: n.W, h: n.H}
		if n.Placed {
			b.x, b.y = n.X, n.Y
			if !havePlaced {
				placedExtent = b.rect()
				havePlaced = true
			} else {
				placedExtent = placedExtent.union(b.rect())
			}
		} else {
			free = append(free, len(boxes))
		}
		if n.W > maxW {
			maxW = n.W
		}
		if n.H > maxH {
			maxH = n.H
		}
		boxes = append(boxes, b)
	}

	if len(free) == 0 {
		return boxes
	}

	gap := math.Max(maxW, maxH) * gridGapFactor
	if gap <= 0 {
		gap = 1
	}
	cellW := maxW + gap
	cellH := maxH + gap
	cols := int(math.Ceil(math.Sqrt(float64(len(free)))))
	if cols < 1 {
		cols = 1
	}

	// Grid origin: top-left cell center. When the scene mixes declared
	// and free nodes, the grid starts one gap below the declared extent
	// so the two regions never interleave.
	originX := cellW / 2
	originY := -cellH / 2
	if havePlaced {
		originX = placedExtent.x0 + cellW/2
		originY = placedExtent.y0 - gap - cellH/2
	}

	for i, idx := range free {
		row := i / cols
		col := i % cols
		boxes[idx].x = originX + float64(col)*cellW
		boxes[idx].y = originY - float64(row)*cellH
	}
	return boxes
}

// contentExtent returns the bounding box of all node boxes and label
// anchors in scene units. ok is false for an empty scene.
func contentExtent(boxes []nodeBox, labels []scene.Label) (rect, bool) {
	var ext rect
	ok := false
	for _, b := range boxes {
		if !ok {
			ext = b.rect()
			ok = true
		} else {
			ext = ext.union(b.rect())
		}
	}
	for _, l := range labels {
		r := rectAt(l.X, l.Y, 0, 0)
		if !ok {
			ext = r
			ok = true
		} else {
			ext = ext.union(r)
		}
	}
	return ext, ok
}
