package assemble

import (
	"bytes"
	"fmt"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/render"
)

const (
	scaleBarSegments = 5
	scaleBarMaxMM    = 50.0
	scaleBarHeightMM = 1.5
)

// niceSeries are the acceptable scale-bar segment lengths in metres,
// descending.
var niceSeries = []float64{5000, 2000, 1000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

// segmentMetres picks the largest nice segment length that keeps the whole
// bar within its maximum width at scale 1:n.
func segmentMetres(n int) float64 {
	mmPerMetre := 1000.0 / float64(n)
	for _, d := range niceSeries {
		if float64(scaleBarSegments)*d*mmPerMetre <= scaleBarMaxMM {
			return d
		}
	}
	return 1
}

// renderScaleBar draws a segmented graphic scale in the bottom-right
// corner of the drawing area. Alternating segments are filled so the bar
// reads without relying on the printed ratio.
func renderScaleBar(buf *bytes.Buffer, page layout.Page, style render.Style) {
	d := segmentMetres(page.Scale)
	mmPerMetre := 1000.0 / float64(page.Scale)
	segMM := d * mmPerMetre
	barMM := segMM * scaleBarSegments

	drawing := page.Format.DrawingRect()
	x0 := drawing.X + drawing.W - barMM - 5
	y0 := drawing.Y + drawing.H - 6

	for i := 0; i < scaleBarSegments; i++ {
		fill := "#fff"
		if i%2 == 0 {
			fill = "#000"
		}
		fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\" stroke=\"#000\" stroke-width=\"0.20\"/>\n",
			render.FmtMM(x0+float64(i)*segMM), render.FmtMM(y0),
			render.FmtMM(segMM), render.FmtMM(scaleBarHeightMM), fill)
	}
	for i := 0; i <= scaleBarSegments; i++ {
		label := formatMetres(float64(i) * d)
		if i == scaleBarSegments {
			label += " m"
		}
		fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" text-anchor=\"middle\">%s</text>\n",
			render.FmtMM(x0+float64(i)*segMM), render.FmtMM(y0-1),
			render.EscapeXML(style.FontFamily), render.FmtMM(style.SmallFontSize),
			render.EscapeXML(label))
	}
}

// formatMetres prints a metre value without a trailing decimal point.
func formatMetres(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
