// Package sheet defines physical page formats and the immutable format
// catalog.
//
// A Format describes one physical paper size: dimensions, margins, the
// title-block rectangle and the output resolution. The catalog is a fixed,
// versioned table loaded once at process start from an embedded TOML file;
// components look formats up by name from the read-only catalog. Adding a
// format is a configuration change, not a code change — an external TOML
// file can extend (or override) the built-in entries.
package sheet

// Rect is an axis-aligned rectangle in millimetres, origin at the page's
// top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Format is an immutable descriptor of a physical page. All linear
// dimensions are in millimetres. Formats are value types; copying is cheap
// and the catalog hands out copies.
type Format struct {
	Name string `toml:"name"`

	WidthMM  float64 `toml:"width_mm"`
	HeightMM float64 `toml:"height_mm"`

	// Margins. The left margin is traditionally wider for binding.
	MarginLeftMM   float64 `toml:"margin_left_mm"`
	MarginRightMM  float64 `toml:"margin_right_mm"`
	MarginTopMM    float64 `toml:"margin_top_mm"`
	MarginBottomMM float64 `toml:"margin_bottom_mm"`

	// TitleBlockHMM is the height of the title-block strip reserved across
	// the full drawing width at the bottom of the frame.
	TitleBlockHMM float64 `toml:"title_block_h_mm"`

	// DPI is the output resolution used to convert millimetres to pixels.
	DPI int `toml:"dpi"`
}

// FrameRect returns the frame (border) rectangle: the page minus margins.
func (f Format) FrameRect() Rect {
	return Rect{
		X: f.MarginLeftMM,
		Y: f.MarginTopMM,
		W: max(0, f.WidthMM-f.MarginLeftMM-f.MarginRightMM),
		H: max(0, f.HeightMM-f.MarginTopMM-f.MarginBottomMM),
	}
}

// TitleBlockRect returns the title-block rectangle, anchored to the bottom
// of the frame and spanning its full width.
func (f Format) TitleBlockRect() Rect {
	frame := f.FrameRect()
	return Rect{
		X: frame.X,
		Y: frame.Y + frame.H - f.TitleBlockHMM,
		W: frame.W,
		H: f.TitleBlockHMM,
	}
}

// DrawingRect returns the usable drawing area: the frame minus the
// title-block strip. Every rendered primitive must fall inside this
// rectangle.
func (f Format) DrawingRect() Rect {
	frame := f.FrameRect()
	return Rect{
		X: frame.X,
		Y: frame.Y,
		W: frame.W,
		H: max(0, frame.H-f.TitleBlockHMM),
	}
}

// DrawingWidthMM returns the drawing area width in millimetres.
func (f Format) DrawingWidthMM() float64 { return f.DrawingRect().W }

// DrawingHeightMM returns the drawing area height in millimetres.
func (f Format) DrawingHeightMM() float64 { return f.DrawingRect().H }

// PxPerMM returns the number of output pixels per millimetre at the
// format's resolution.
func (f Format) PxPerMM() float64 {
	return MMToPx(1.0, f.DPI)
}

// PageWidthPx returns the full page width in output pixels.
func (f Format) PageWidthPx() float64 { return f.WidthMM * f.PxPerMM() }

// PageHeightPx returns the full page height in output pixels.
func (f Format) PageHeightPx() float64 { return f.HeightMM * f.PxPerMM() }
