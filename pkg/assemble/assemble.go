// Package assemble composes complete sheet documents: frame, title block,
// scale bar, legend and the rendered drawing content, serialized as a
// self-contained SVG per page. No external assets are referenced, so a
// sheet file renders identically wherever it is opened.
package assemble

import (
	"bytes"
	"fmt"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/render"
)

// Doc carries the per-document inputs shared by all sheets.
type Doc struct {
	Title  string
	Style  render.Style
	Fills  map[string]string // kind -> fill, from render.KindFills
	Legend []string          // sorted kinds shown in the legend
}

// NewDoc derives the shared document inputs from a layout result.
func NewDoc(res *layout.Result) Doc {
	return Doc{
		Title:  res.Title,
		Style:  render.DefaultStyle(),
		Fills:  render.KindFills(res.Pages),
		Legend: render.UsedKinds(res.Pages),
	}
}

// Page serializes one sheet as a complete SVG document. The byte output
// is a pure function of the page and doc inputs.
func Page(page layout.Page, doc Doc) []byte {
	f := page.Format
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %s %s\" width=\"%.0f\" height=\"%.0f\">\n",
		render.FmtMM(f.WidthMM), render.FmtMM(f.HeightMM), f.PageWidthPx(), f.PageHeightPx())
	render.RenderDefs(&buf)

	fmt.Fprintf(&buf, "  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"#fff\"/>\n",
		render.FmtMM(f.WidthMM), render.FmtMM(f.HeightMM))

	frame := f.FrameRect()
	fmt.Fprintf(&buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"#000\" stroke-width=\"%s\"/>\n",
		render.FmtMM(frame.X), render.FmtMM(frame.Y), render.FmtMM(frame.W), render.FmtMM(frame.H),
		render.FmtMM(doc.Style.FrameStroke))

	drawing := f.DrawingRect()
	render.RenderContent(&buf, page, doc.Style, doc.Fills, drawing.X, drawing.Y)

	renderScaleBar(&buf, page, doc.Style)
	if page.Index == 1 && len(doc.Legend) > 0 {
		renderLegend(&buf, page, doc)
	}
	renderTitleBlock(&buf, page, doc)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// SheetName returns the file stem for a page, "S1", "S2", ...
func SheetName(index int) string {
	return fmt.Sprintf("S%d", index)
}
