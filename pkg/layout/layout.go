package layout

import (
	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
	"sheetpress/pkg/sheet"
)

// Options controls a layout run. The zero value selects the built-in
// format catalog, automatic format choice and automatic scale.
type Options struct {
	// Format names a sheet format, or sheet.AutoFormat (its zero value
	// behaves the same) to pick the smallest format the content fits.
	Format string

	// Scale forces a denominator from the catalog; 0 selects the
	// largest scale that fits automatically.
	Scale int

	// Scales overrides the allowed denominators; defaults to
	// DefaultScales. Must be ascending.
	Scales []int

	// Catalog supplies sheet formats; defaults to sheet.Builtin().
	Catalog *sheet.Catalog
}

// Build lays out a scene into pages. The scene is validated first; the
// input is never mutated. The same scene and options always produce an
// identical Result.
func Build(s *scene.Scene, opts Options) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = sheet.Builtin()
	}
	scales := opts.Scales
	if len(scales) == 0 {
		scales = DefaultScales
	}

	boxes := placeNodes(s)
	repairOverlaps(boxes)
	ext, hasContent := contentExtent(boxes, s.Labels())

	format, scaleN, err := resolvePage(s, opts, catalog, scales, ext, hasContent)
	if err != nil {
		return nil, err
	}

	usableW := format.DrawingWidthMM() - 2*contentPadMM
	usableH := format.DrawingHeightMM() - 2*contentPadMM
	if err := checkNodeSizes(boxes, scaleN, usableW, usableH, format.Name); err != nil {
		return nil, err
	}

	// Convert to content millimetres: origin at the extent's top-left,
	// Y flipped from scene space (Y up) to page space (Y down).
	k := mmPerUnit(scaleN)
	toMM := func(x, y float64) Point {
		return Point{X: (x - ext.x0) * k, Y: (ext.y1 - y) * k}
	}

	mmBoxes := make([]mmBox, 0, len(boxes))
	rects := make(map[string]rect, len(boxes))
	for _, b := range boxes {
		tl := toMM(b.x-b.w/2, b.y+b.h/2)
		r := rectAt(tl.X, tl.Y, b.w*k, b.h*k)
		mmBoxes = append(mmBoxes, mmBox{nodeBox: b, r: r})
		rects[b.id] = r
	}
	var mmLabels []mmLabel
	for _, l := range s.Labels() {
		mmLabels = append(mmLabels, mmLabel{text: l.Text, at: toMM(l.X, l.Y)})
	}
	paths := routeConnectors(s.Connectors(), rects)

	contentW, contentH := ext.w()*k, ext.h()*k
	t := newTiler(contentW, contentH, usableW, usableH)
	res := paginate(mmBoxes, paths, mmLabels, t, format, scaleN, s.Meta.Title)

	if err := verifyFit(res, format); err != nil {
		return nil, err
	}
	return res, nil
}

// resolvePage settles the format and scale, honouring explicit choices
// from options or scene metadata and falling back to automatic selection.
// Automatic selection tries formats by ascending drawing area and returns
// the first with a fitting scale; when even the largest format cannot hold
// the content at the smallest scale it is kept and pagination takes over.
func resolvePage(s *scene.Scene, opts Options, catalog *sheet.Catalog, scales []int, ext rect, hasContent bool) (sheet.Format, int, error) {
	formatName := opts.Format
	if formatName == "" || formatName == sheet.AutoFormat {
		formatName = s.Meta.FormatHint
	}
	scaleN := opts.Scale
	if scaleN == 0 {
		scaleN = s.Meta.ScaleHint
	}
	if scaleN != 0 {
		if err := validateScale(scales, scaleN); err != nil {
			return sheet.Format{}, 0, err
		}
	}

	if !hasContent {
		// Nothing to fit: any format works, take the requested or the
		// smallest, at the requested or largest scale.
		f, err := pickFixed(catalog, formatName)
		if err != nil {
			return sheet.Format{}, 0, err
		}
		if scaleN == 0 {
			scaleN = scales[0]
		}
		return f, scaleN, nil
	}

	extentW, extentH := ext.w(), ext.h()

	if formatName != "" && formatName != sheet.AutoFormat {
		f, err := catalog.Lookup(formatName)
		if err != nil {
			return sheet.Format{}, 0, err
		}
		if scaleN == 0 {
			scaleN = fitOrSmallest(scales, extentW, extentH, f)
		}
		return f, scaleN, nil
	}

	// Automatic format: smallest drawing area that fits.
	var fallback sheet.Format
	for _, f := range catalog.ByArea() {
		fallback = f
		if scaleN != 0 {
			k := mmPerUnit(scaleN)
			if extentW*k <= f.DrawingWidthMM()-2*contentPadMM+epsilon &&
				extentH*k <= f.DrawingHeightMM()-2*contentPadMM+epsilon {
				return f, scaleN, nil
			}
		} else if n := selectScale(scales, extentW, extentH,
			f.DrawingWidthMM()-2*contentPadMM, f.DrawingHeightMM()-2*contentPadMM); n != 0 {
			return f, n, nil
		}
	}
	// Largest format, smallest legible scale, paginated.
	if scaleN == 0 {
		scaleN = scales[len(scales)-1]
	}
	return fallback, scaleN, nil
}

// pickFixed resolves an explicit format name, or the smallest catalog
// format when none was named.
func pickFixed(catalog *sheet.Catalog, name string) (sheet.Format, error) {
	if name != "" && name != sheet.AutoFormat {
		return catalog.Lookup(name)
	}
	return catalog.ByArea()[0], nil
}

// fitOrSmallest returns the best fitting denominator for a fixed format,
// or the smallest legible scale when pagination is unavoidable.
func fitOrSmallest(scales []int, extentW, extentH float64, f sheet.Format) int {
	n := selectScale(scales, extentW, extentH,
		f.DrawingWidthMM()-2*contentPadMM, f.DrawingHeightMM()-2*contentPadMM)
	if n == 0 {
		n = scales[len(scales)-1]
	}
	return n
}

// verifyFit is the final consistency gate: every placed node must sit
// fully inside its page's drawing area, and no two node boxes on the same
// page may intersect. A violation here means a layout stage broke its
// contract.
func verifyFit(res *Result, format sheet.Format) error {
	area := rectAt(0, 0, format.DrawingWidthMM(), format.DrawingHeightMM())
	for _, p := range res.Pages {
		for i, n := range p.Nodes {
			box := rectAt(n.X, n.Y, n.W, n.H)
			if box.x0 < area.x0-epsilon || box.y0 < area.y0-epsilon ||
				box.x1 > area.x1+epsilon || box.y1 > area.y1+epsilon {
				return errors.New(errors.ErrCodeLayoutInconsistency,
					"node %q escapes the drawing area on page %d", n.ID, p.Index)
			}
			for _, m := range p.Nodes[i+1:] {
				if box.intersects(rectAt(m.X, m.Y, m.W, m.H)) {
					return errors.New(errors.ErrCodeLayoutInconsistency,
						"nodes %q and %q overlap on page %d", n.ID, m.ID, p.Index)
				}
			}
		}
	}
	return nil
}
