package assemble

import (
	"bytes"
	"fmt"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/render"
)

const (
	legendSwatchMM = 4.0
	legendRowMM    = 6.0
	legendPadMM    = 3.0
)

// renderLegend lists the node kinds actually used in the document with
// their fill swatches, anchored in the bottom-left corner of the drawing
// area of the first sheet. Entries arrive pre-sorted from the renderer.
func renderLegend(buf *bytes.Buffer, page layout.Page, doc Doc) {
	drawing := page.Format.DrawingRect()
	rows := len(doc.Legend)
	boxH := float64(rows)*legendRowMM + 2*legendPadMM + legendRowMM
	boxW := legendWidth(doc)
	x0 := drawing.X + 2
	y0 := drawing.Y + drawing.H - boxH - 2

	fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"#fff\" stroke=\"#000\" stroke-width=\"%s\"/>\n",
		render.FmtMM(x0), render.FmtMM(y0), render.FmtMM(boxW), render.FmtMM(boxH),
		render.FmtMM(doc.Style.NodeStroke))
	fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" font-weight=\"bold\">Legend</text>\n",
		render.FmtMM(x0+legendPadMM), render.FmtMM(y0+legendPadMM+doc.Style.LabelFontSize),
		render.EscapeXML(doc.Style.FontFamily), render.FmtMM(doc.Style.LabelFontSize))

	for i, kind := range doc.Legend {
		rowY := y0 + legendPadMM + legendRowMM + float64(i)*legendRowMM + 1.5
		fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\" stroke=\"#000\" stroke-width=\"0.20\"/>\n",
			render.FmtMM(x0+legendPadMM), render.FmtMM(rowY),
			render.FmtMM(legendSwatchMM), render.FmtMM(legendSwatchMM), doc.Fills[kind])
		fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\">%s</text>\n",
			render.FmtMM(x0+legendPadMM+legendSwatchMM+2),
			render.FmtMM(rowY+legendSwatchMM-0.8),
			render.EscapeXML(doc.Style.FontFamily), render.FmtMM(doc.Style.LabelFontSize),
			render.EscapeXML(kind))
	}
}

// legendWidth sizes the legend box to its longest entry.
func legendWidth(doc Doc) float64 {
	longest := len("Legend")
	for _, k := range doc.Legend {
		if n := len([]rune(k)); n > longest {
			longest = n
		}
	}
	w := legendPadMM*2 + legendSwatchMM + 2 + float64(longest)*doc.Style.LabelFontSize*0.55
	if w < 30 {
		w = 30
	}
	return w
}
