package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/scene"
)

// charWidthRatio approximates glyph advance as a fraction of font size for
// the default sans face. Good enough for clipping; exact metrics would
// need font loading the output format cannot rely on anyway.
const charWidthRatio = 0.55

// fitText clips s to the given width in millimetres at the given font
// size, appending an ellipsis when characters were dropped. Clipping
// counts runes, not bytes, so Cyrillic identifiers truncate cleanly.
func fitText(s string, widthMM, fontSize float64) string {
	maxChars := int(widthMM / (fontSize * charWidthRatio))
	if maxChars < 1 {
		maxChars = 1
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars <= 1 {
		return "…"
	}
	return string(runes[:maxChars-1]) + "…"
}

// attrLines flattens a node's attributes into "key: value" display lines
// in the scene's canonical sorted key order.
func attrLines(attrs scene.Attrs) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := attrs.Keys()
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+attrs[k])
	}
	return lines
}

// EscapeXML escapes text for embedding in SVG attribute or element
// content.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// FmtMM renders a millimetre coordinate with fixed two-decimal precision.
// A fixed width keeps output byte-stable across platforms.
func FmtMM(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	// Avoid "-0.00", which depends on rounding direction.
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// pathData builds an SVG path string from polyline points.
func pathData(pts []layout.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(FmtMM(p.X))
		b.WriteString(" ")
		b.WriteString(FmtMM(p.Y))
	}
	return b.String()
}
