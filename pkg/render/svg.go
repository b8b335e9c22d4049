package render

import (
	"bytes"
	"fmt"
	"math"

	"sheetpress/pkg/layout"
)

// RenderDefs writes shared SVG definitions: the arrowhead marker used by
// directed connectors. Marker geometry is in stroke units so the head
// scales with the line weight.
func RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString("    <marker id=\"arrow\" viewBox=\"0 0 10 10\" refX=\"9\" refY=\"5\" markerWidth=\"8\" markerHeight=\"8\" orient=\"auto-start-reverse\">\n")
	buf.WriteString("      <path d=\"M0 0 L10 5 L0 10 z\" fill=\"#000\"/>\n")
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

// RenderContent writes one page's drawing content as an SVG group
// translated to the drawing area origin. Coordinates are millimetres.
// Emission order is connectors, then nodes, then labels; within each
// class the layout order (already deterministic) is preserved.
func RenderContent(buf *bytes.Buffer, page layout.Page, style Style, fills map[string]string, originX, originY float64) {
	fmt.Fprintf(buf, "  <g transform=\"translate(%s %s)\" font-family=\"%s\">\n",
		FmtMM(originX), FmtMM(originY), EscapeXML(style.FontFamily))

	for _, c := range page.Connectors {
		renderConnector(buf, c, style)
	}
	for _, n := range page.Nodes {
		renderNode(buf, n, style, fills)
	}
	for _, l := range page.Labels {
		fmt.Fprintf(buf, "    <text x=\"%s\" y=\"%s\" font-size=\"%s\">%s</text>\n",
			FmtMM(l.X), FmtMM(l.Y), FmtMM(style.LabelFontSize), EscapeXML(l.Text))
	}

	buf.WriteString("  </g>\n")
}

func renderConnector(buf *bytes.Buffer, c layout.RoutedConnector, style Style) {
	if len(c.Points) < 2 {
		return
	}
	marker := ""
	// The arrowhead belongs at the node end, not at a page-boundary cut.
	if c.Directed && c.ContinuesTo == 0 {
		marker = " marker-end=\"url(#arrow)\""
	}
	fmt.Fprintf(buf, "    <path d=\"%s\" fill=\"none\" stroke=\"#000\" stroke-width=\"%s\"%s/>\n",
		pathData(c.Points), FmtMM(style.ConnectorStroke), marker)

	if c.Label != "" {
		at := midpointOffset(c.Points, labelClearanceMM)
		fmt.Fprintf(buf, "    <text x=\"%s\" y=\"%s\" font-size=\"%s\" text-anchor=\"middle\">%s</text>\n",
			FmtMM(at.X), FmtMM(at.Y), FmtMM(style.LabelFontSize), EscapeXML(c.Label))
	}
	if c.ContinuesFrom != 0 {
		renderContinuation(buf, c.Points[0], c.ContinuesFrom, style)
	}
	if c.ContinuesTo != 0 {
		renderContinuation(buf, c.Points[len(c.Points)-1], c.ContinuesTo, style)
	}
}

// labelClearanceMM lifts connector labels off the line.
const labelClearanceMM = 2.0

// renderContinuation marks a cut end of a split connector with a
// cross-reference to the sheet carrying the other portion.
func renderContinuation(buf *bytes.Buffer, at layout.Point, sheet int, style Style) {
	fmt.Fprintf(buf, "    <circle cx=\"%s\" cy=\"%s\" r=\"0.8\" fill=\"#000\"/>\n",
		FmtMM(at.X), FmtMM(at.Y))
	fmt.Fprintf(buf, "    <text x=\"%s\" y=\"%s\" font-size=\"%s\" text-anchor=\"middle\" font-style=\"italic\">%s</text>\n",
		FmtMM(at.X), FmtMM(at.Y-1.5), FmtMM(style.SmallFontSize),
		EscapeXML(fmt.Sprintf("see sheet %d", sheet)))
}

func renderNode(buf *bytes.Buffer, n layout.PlacedNode, style Style, fills map[string]string) {
	fill, ok := fills[n.Kind]
	if !ok {
		fill = fills[""]
	}
	fmt.Fprintf(buf, "    <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\" stroke=\"#000\" stroke-width=\"%s\"/>\n",
		FmtMM(n.X), FmtMM(n.Y), FmtMM(n.W), FmtMM(n.H), fill, FmtMM(style.NodeStroke))

	const pad = 1.0
	textW := n.W - 2*pad
	y := n.Y + pad + style.NodeFontSize
	if y > n.Y+n.H-pad {
		return // box too small for any text
	}
	fmt.Fprintf(buf, "    <text x=\"%s\" y=\"%s\" font-size=\"%s\" text-anchor=\"middle\" font-weight=\"bold\">%s</text>\n",
		FmtMM(n.X+n.W/2), FmtMM(y), FmtMM(style.NodeFontSize),
		EscapeXML(fitText(n.ID, textW, style.NodeFontSize)))

	lineH := style.AttrFontSize * 1.3
	for _, line := range attrLines(n.Attrs) {
		y += lineH
		// Attribute lines that would overflow the box are dropped, not
		// squeezed.
		if y > n.Y+n.H-pad {
			break
		}
		fmt.Fprintf(buf, "    <text x=\"%s\" y=\"%s\" font-size=\"%s\" text-anchor=\"middle\">%s</text>\n",
			FmtMM(n.X+n.W/2), FmtMM(y), FmtMM(style.AttrFontSize),
			EscapeXML(fitText(line, textW, style.AttrFontSize)))
	}
}

// midpointOffset returns the arc-length midpoint of a polyline shifted
// perpendicular to the local direction, mirroring the anchor the layout
// stage uses for page assignment.
func midpointOffset(pts []layout.Point, offset float64) layout.Point {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if seg == 0 {
			continue
		}
		if half <= seg {
			t := half / seg
			mx := pts[i-1].X + (pts[i].X-pts[i-1].X)*t
			my := pts[i-1].Y + (pts[i].Y-pts[i-1].Y)*t
			nx := -(pts[i].Y - pts[i-1].Y) / seg
			ny := (pts[i].X - pts[i-1].X) / seg
			return layout.Point{X: mx + nx*offset, Y: my + ny*offset}
		}
		half -= seg
	}
	return pts[len(pts)-1]
}
