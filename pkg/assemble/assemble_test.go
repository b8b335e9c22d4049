package assemble

import (
	"bytes"
	"strings"
	"testing"

	"sheetpress/pkg/layout"
	"sheetpress/pkg/sheet"
)

func testResult(t *testing.T) *layout.Result {
	t.Helper()
	format, err := sheet.Builtin().Lookup("A4")
	if err != nil {
		t.Fatalf("Lookup(A4): %v", err)
	}
	page := layout.Page{
		Index:  1,
		Total:  2,
		Format: format,
		Scale:  500,
		Nodes: []layout.PlacedNode{
			{ID: "ws-1", Kind: "station", X: 20, Y: 30, W: 40, H: 24},
		},
		Connectors: []layout.RoutedConnector{
			{From: "ws-1", To: "ws-2", Directed: true, ContinuesTo: 2,
				Points: []layout.Point{{X: 60, Y: 42}, {X: 175, Y: 42}}},
		},
	}
	second := layout.Page{Index: 2, Total: 2, Format: format, Scale: 500}
	return &layout.Result{
		Pages:  []layout.Page{page, second},
		Format: format,
		Scale:  500,
		Title:  "Water supply network",
	}
}

func TestPageDocument(t *testing.T) {
	res := testResult(t)
	doc := NewDoc(res)
	out := string(Page(res.Pages[0], doc))

	if !strings.HasPrefix(out, "<svg xmlns=\"http://www.w3.org/2000/svg\"") {
		t.Error("document does not start with an svg element")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document is not closed")
	}
	for _, want := range []string{
		"Water supply network",
		">1:500</text>",
		">Sheet 1 of 2</text>",
		"see sheet 2",
		">Legend</text>",
		">station</text>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sheet missing %q", want)
		}
	}
	// Self-contained: no external references of any sort.
	if strings.Contains(out, "xlink") || strings.Contains(out, "<image") {
		t.Error("sheet references external content")
	}
}

func TestLegendOnFirstSheetOnly(t *testing.T) {
	res := testResult(t)
	doc := NewDoc(res)
	second := string(Page(res.Pages[1], doc))
	if strings.Contains(second, ">Legend</text>") {
		t.Error("legend repeated on a continuation sheet")
	}
	if !strings.Contains(second, ">Sheet 2 of 2</text>") {
		t.Error("continuation sheet misnumbered")
	}
}

func TestPageDeterministic(t *testing.T) {
	res := testResult(t)
	doc := NewDoc(res)
	if !bytes.Equal(Page(res.Pages[0], doc), Page(res.Pages[0], doc)) {
		t.Error("identical page assembled to different bytes")
	}
}

func TestSegmentMetres(t *testing.T) {
	tests := []struct {
		scale int
		want  float64
	}{
		{100, 1},
		{500, 5},
		{1000, 10},
		{10000, 100},
	}
	for _, tt := range tests {
		if got := segmentMetres(tt.scale); got != tt.want {
			t.Errorf("segmentMetres(1:%d) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestSheetName(t *testing.T) {
	if got := SheetName(3); got != "S3" {
		t.Errorf("SheetName(3) = %q, want S3", got)
	}
}
