package assemble

import (
	"bytes"
	"fmt"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/render"
)

// Title block cell widths as fractions of the frame width. The wide left
// cell holds the document title; the narrow cells hold scale and sheet
// numbering.
const (
	titleCellFrac = 0.6
	scaleCellFrac = 0.2
)

// renderTitleBlock draws the bottom strip: outline, two dividers, and the
// title / scale / sheet-count fields.
func renderTitleBlock(buf *bytes.Buffer, page layout.Page, doc Doc) {
	tb := page.Format.TitleBlockRect()
	s := doc.Style

	fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"#000\" stroke-width=\"%s\"/>\n",
		render.FmtMM(tb.X), render.FmtMM(tb.Y), render.FmtMM(tb.W), render.FmtMM(tb.H),
		render.FmtMM(s.FrameStroke))

	div1 := tb.X + tb.W*titleCellFrac
	div2 := div1 + tb.W*scaleCellFrac
	for _, x := range []float64{div1, div2} {
		fmt.Fprintf(buf, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"#000\" stroke-width=\"%s\"/>\n",
			render.FmtMM(x), render.FmtMM(tb.Y), render.FmtMM(x), render.FmtMM(tb.Y+tb.H),
			render.FmtMM(s.NodeStroke))
	}

	textY := tb.Y + tb.H/2 + s.NodeFontSize/2
	title := doc.Title
	if title == "" {
		title = "Untitled drawing"
	}
	fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\">%s</text>\n",
		render.FmtMM(tb.X+3), render.FmtMM(textY), render.EscapeXML(s.FontFamily),
		render.FmtMM(s.NodeFontSize), render.EscapeXML(title))
	fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" text-anchor=\"middle\">1:%d</text>\n",
		render.FmtMM(div1+tb.W*scaleCellFrac/2), render.FmtMM(textY), render.EscapeXML(s.FontFamily),
		render.FmtMM(s.NodeFontSize), page.Scale)
	fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" text-anchor=\"middle\">Sheet %d of %d</text>\n",
		render.FmtMM(div2+(tb.X+tb.W-div2)/2), render.FmtMM(textY), render.EscapeXML(s.FontFamily),
		render.FmtMM(s.NodeFontSize), page.Index, page.Total)
}
