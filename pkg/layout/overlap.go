package layout

import "math"

// repairOverlaps nudges overlapping node boxes apart. The pass is
// deterministic: pairs are visited in ID order (the slice is already
// sorted), the lexicographically later node moves, displacement runs along
// the axis of least overlap, and the shift is the smallest whole multiple
// of the step that clears the pair. Shifts always run in the positive
// direction, so every move strictly advances the moved node and the
// process cannot oscillate. Sweeps are bounded; residual overlap in a
// pathological scene is caught by the final verification gate.
func repairOverlaps(boxes []nodeBox) {
	if len(boxes) < 2 {
		return
	}

	var maxDim float64
	for _, b := range boxes {
		maxDim = math.Max(maxDim, math.Max(b.w, b.h))
	}
	step := maxDim * gridGapFactor
	if step <= 0 {
		step = 1
	}

	maxSweeps := len(boxes) + 2
	for sweep := 0; sweep < maxSweeps; sweep++ {
		moved := false
		for i := 0; i < len(boxes); i++ {
			for j := i + 1; j < len(boxes); j++ {
				dx, dy := boxes[i].rect().overlap(boxes[j].rect())
				if dx <= epsilon || dy <= epsilon {
					continue
				}
				shiftClear(&boxes[j], boxes[i], dx, dy, step)
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}

// shiftClear moves b along the axis with the smaller overlap until its box
// clears the anchor's far edge on that axis.
func shiftClear(b *nodeBox, anchor nodeBox, dx, dy, step float64) {
	shift := func(need float64) float64 {
		return math.Ceil((need+epsilon)/step) * step
	}
	if dx <= dy {
		need := (anchor.x + anchor.w/2) - (b.x - b.w/2)
		b.x += shift(need)
	} else {
		need := (anchor.y + anchor.h/2) - (b.y - b.h/2)
		b.y += shift(need)
	}
}
