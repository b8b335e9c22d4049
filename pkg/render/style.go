// Package render turns laid-out pages into SVG drawing primitives.
//
// The renderer works entirely in millimetre user units: the enclosing SVG
// document declares a millimetre viewBox so line weights and font sizes
// are real drawing-standard measurements. Emission order is fixed —
// connectors first, then nodes in identifier order, then labels — so the
// same page always serializes to the same bytes.
package render

import (
	"sort"

	"sheetpress/pkg/layout"
)

// Style holds the visual parameters for content rendering. Measurements
// are millimetres on paper, matching technical drawing line-weight
// conventions.
type Style struct {
	NodeStroke      float64 // node outline weight
	ConnectorStroke float64
	FrameStroke     float64 // heavy sheet frame weight, used by assembly

	NodeFontSize  float64 // node identifier text
	AttrFontSize  float64 // attribute lines inside the node box
	LabelFontSize float64 // connector and free-standing labels
	SmallFontSize float64 // continuation hints

	FontFamily string
}

// DefaultStyle mirrors ISO 128 pen widths: 0.7 for frames, 0.5 for
// outlines, 0.35 for connection lines.
func DefaultStyle() Style {
	return Style{
		NodeStroke:      0.5,
		ConnectorStroke: 0.35,
		FrameStroke:     0.7,
		NodeFontSize:    3.5,
		AttrFontSize:    2.5,
		LabelFontSize:   2.5,
		SmallFontSize:   2.2,
		FontFamily:      "Arial, Helvetica, sans-serif",
	}
}

// palette is the fixed fill rotation for node kinds. Muted engineering
// tints so black line work stays readable on top.
var palette = []string{
	"#e8eef7", // blue tint
	"#e9f3e6", // green tint
	"#f7efe0", // sand
	"#f3e6ea", // rose
	"#e6f0f0", // teal tint
	"#efe8f5", // violet tint
}

const defaultFill = "#f2f2f2"

// KindFills assigns each kind used on the given pages a fill color.
// Kinds are collected across all pages and sorted first, so the mapping —
// and with it the legend — does not depend on page traversal order.
// The empty kind always maps to the neutral default fill.
func KindFills(pages []layout.Page) map[string]string {
	seen := map[string]struct{}{}
	for _, p := range pages {
		for _, n := range p.Nodes {
			if n.Kind != "" {
				seen[n.Kind] = struct{}{}
			}
		}
	}
	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fills := make(map[string]string, len(kinds)+1)
	fills[""] = defaultFill
	for i, k := range kinds {
		fills[k] = palette[i%len(palette)]
	}
	return fills
}

// UsedKinds returns the sorted kinds present on the pages, the source for
// the sheet legend.
func UsedKinds(pages []layout.Page) []string {
	fills := KindFills(pages)
	kinds := make([]string, 0, len(fills))
	for k := range fills {
		if k != "" {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}
