package sheet

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"sheetpress/pkg/errors"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()

	tests := []struct {
		name    string
		wantW   float64
		wantH   float64
		wantErr bool
	}{
		{name: "A4", wantW: 210, wantH: 297},
		{name: "a4", wantW: 210, wantH: 297}, // case-insensitive
		{name: "A3", wantW: 297, wantH: 420},
		{name: "A3L", wantW: 420, wantH: 297},
		{name: "A5", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := c.Lookup(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Lookup(%q) succeeded, want error", tt.name)
				}
				if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
					t.Errorf("Lookup(%q) error code = %v, want UNSUPPORTED_FORMAT", tt.name, errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.name, err)
			}
			if f.WidthMM != tt.wantW || f.HeightMM != tt.wantH {
				t.Errorf("Lookup(%q) = %gx%g, want %gx%g", tt.name, f.WidthMM, f.HeightMM, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDrawingRect(t *testing.T) {
	c := Builtin()
	a4, err := c.Lookup("A4")
	if err != nil {
		t.Fatal(err)
	}

	d := a4.DrawingRect()
	// 210 - 20 - 10 = 180 wide; 297 - 10 - 10 - 30 title block = 247 high.
	if d.W != 180 || d.H != 247 {
		t.Errorf("DrawingRect() = %gx%g, want 180x247", d.W, d.H)
	}
	if d.X != 20 || d.Y != 10 {
		t.Errorf("DrawingRect() origin = (%g,%g), want (20,10)", d.X, d.Y)
	}

	tb := a4.TitleBlockRect()
	if tb.H != 30 {
		t.Errorf("TitleBlockRect() height = %g, want 30", tb.H)
	}
	if got := tb.Y + tb.H; got != a4.FrameRect().Y+a4.FrameRect().H {
		t.Errorf("title block not flush with frame bottom: %g", got)
	}
}

func TestByAreaOrdering(t *testing.T) {
	c := Builtin()
	byArea := c.ByArea()
	if len(byArea) < 2 {
		t.Fatalf("ByArea() returned %d formats", len(byArea))
	}
	for i := 1; i < len(byArea); i++ {
		prev := byArea[i-1].DrawingRect()
		cur := byArea[i].DrawingRect()
		if prev.W*prev.H > cur.W*cur.H {
			t.Errorf("ByArea() not ascending at %d: %s before %s", i, byArea[i-1].Name, byArea[i].Name)
		}
	}
}

func TestMMToPx(t *testing.T) {
	// 25.4 mm = 1 inch = 96 px at default DPI.
	if got := MMToPx(25.4, 96); math.Abs(got-96) > 1e-9 {
		t.Errorf("MMToPx(25.4, 96) = %g, want 96", got)
	}
	if got := PxToMM(MMToPx(17.3, 120), 120); math.Abs(got-17.3) > 1e-9 {
		t.Errorf("round-trip = %g, want 17.3", got)
	}
}

func TestPagePixelSize(t *testing.T) {
	f := Format{WidthMM: 210, HeightMM: 297, DPI: 96}
	if got := f.PageWidthPx(); math.Abs(got-210*f.PxPerMM()) > 1e-9 {
		t.Errorf("PageWidthPx() = %g, want %g", got, 210*f.PxPerMM())
	}
	if got := f.PageHeightPx(); math.Abs(got-297.0/25.4*96) > 1e-9 {
		t.Errorf("PageHeightPx() = %g, want %g", got, 297.0/25.4*96)
	}
}

func TestLoadMergesOverBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formats.toml")
	ext := `version = 2

[[format]]
name = "A2"
width_mm = 420.0
height_mm = 594.0
margin_left_mm = 20.0
margin_right_mm = 10.0
margin_top_mm = 10.0
margin_bottom_mm = 10.0
title_block_h_mm = 40.0
dpi = 96
`
	if err := os.WriteFile(path, []byte(ext), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
	if _, err := c.Lookup("A2"); err != nil {
		t.Errorf("Lookup(A2) after merge: %v", err)
	}
	if _, err := c.Lookup("A4"); err != nil {
		t.Errorf("builtin A4 lost after merge: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}
