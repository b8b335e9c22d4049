package layout

import "sheetpress/pkg/errors"

// DefaultScales is the catalog of allowed scale denominators, ascending.
// A denominator N means "1:N": one millimetre on paper covers N millimetres
// of scene space, so one scene unit (a metre) maps to 1000/N millimetres.
var DefaultScales = []int{100, 200, 500, 1000, 2000, 5000, 10000}

// mmPerUnit returns how many paper millimetres one scene unit occupies
// at scale 1:n.
func mmPerUnit(n int) float64 { return 1000.0 / float64(n) }

// selectScale picks the largest scale (smallest denominator) at which the
// content extent fits the usable drawing area. The extent is in scene
// units, the area in millimetres. Returns 0 when not even the smallest
// scale fits, which triggers pagination instead of further shrinking.
func selectScale(scales []int, extentW, extentH, areaW, areaH float64) int {
	for _, n := range scales {
		k := mmPerUnit(n)
		if extentW*k <= areaW+epsilon && extentH*k <= areaH+epsilon {
			return n
		}
	}
	return 0
}

// validateScale checks a caller-requested denominator against the catalog.
func validateScale(scales []int, n int) error {
	for _, s := range scales {
		if s == n {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidScale,
		"scale 1:%d is not in the catalog %v", n, scales)
}

// checkNodeSizes verifies every node fits the usable drawing area on its
// own at the given scale. A single node larger than a full sheet can never
// be laid out and must be reported, not silently clipped.
func checkNodeSizes(nodes []nodeBox, n int, areaW, areaH float64, format string) error {
	k := mmPerUnit(n)
	for _, b := range nodes {
		if b.w*k > areaW+epsilon || b.h*k > areaH+epsilon {
			return errors.New(errors.ErrCodeOversizedNode,
				"node %q (%.6gx%.6g units) exceeds the drawing area of format %s at scale 1:%d",
				b.id, b.w, b.h, format, n)
		}
	}
	return nil
}
