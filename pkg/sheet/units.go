package sheet

// DefaultDPI is the default output resolution for millimetre-to-pixel
// conversion.
const DefaultDPI = 96

// MMToPx converts millimetres to output pixels at the given DPI.
//
// Formula: px = mm * dpi / 25.4
func MMToPx(mm float64, dpi int) float64 {
	return mm * float64(dpi) / 25.4
}

// PxToMM converts output pixels back to millimetres at the given DPI.
func PxToMM(px float64, dpi int) float64 {
	return px * 25.4 / float64(dpi)
}
