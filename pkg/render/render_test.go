package render

import (
	"bytes"
	"strings"
	"testing"

	"sheetpress/pkg/layout"
)

func testPage() layout.Page {
	return layout.Page{
		Index: 1,
		Total: 1,
		Scale: 500,
		Nodes: []layout.PlacedNode{
			{ID: "pump-1", Kind: "pump", X: 10, Y: 10, W: 30, H: 20,
				Attrs: map[string]string{"power": "15 kW", "medium": "water"}},
			{ID: "tank-1", Kind: "tank", X: 80, Y: 10, W: 30, H: 20},
		},
		Connectors: []layout.RoutedConnector{
			{From: "pump-1", To: "tank-1", Directed: true, Label: "DN100",
				Points: []layout.Point{{X: 40, Y: 20}, {X: 80, Y: 20}}},
		},
		Labels: []layout.PlacedLabel{{Text: "intake hall", X: 20, Y: 60}},
	}
}

func renderToString(p layout.Page) string {
	var buf bytes.Buffer
	RenderContent(&buf, p, DefaultStyle(), KindFills([]layout.Page{p}), 0, 0)
	return buf.String()
}

func TestRenderContentDeterministic(t *testing.T) {
	first := renderToString(testPage())
	second := renderToString(testPage())
	if first != second {
		t.Error("identical pages rendered to different bytes")
	}
}

func TestRenderContentStructure(t *testing.T) {
	out := renderToString(testPage())

	// Connectors must appear before nodes so line work stays underneath.
	pathIdx := strings.Index(out, "<path")
	rectIdx := strings.Index(out, "<rect")
	if pathIdx < 0 || rectIdx < 0 || pathIdx > rectIdx {
		t.Errorf("connector path should precede node rects (path at %d, rect at %d)", pathIdx, rectIdx)
	}

	for _, want := range []string{
		"marker-end=\"url(#arrow)\"",
		">pump-1</text>",
		">DN100</text>",
		">intake hall</text>",
		"medium: water",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered content missing %q", want)
		}
	}

	// Attribute keys render in sorted order.
	if strings.Index(out, "medium: water") > strings.Index(out, "power: 15 kW") {
		t.Error("attribute lines not in sorted key order")
	}
}

func TestContinuationSuppressesArrow(t *testing.T) {
	p := layout.Page{
		Connectors: []layout.RoutedConnector{
			{From: "a", To: "b", Directed: true, ContinuesTo: 2,
				Points: []layout.Point{{X: 0, Y: 0}, {X: 170, Y: 0}}},
		},
	}
	out := renderToString(p)
	if strings.Contains(out, "marker-end") {
		t.Error("cut connector end must not carry an arrowhead")
	}
	if !strings.Contains(out, "see sheet 2") {
		t.Error("cut connector end missing its continuation reference")
	}
}

func TestTextEscaping(t *testing.T) {
	p := layout.Page{
		Labels: []layout.PlacedLabel{{Text: "flow < 5 m³/h & rising", X: 0, Y: 0}},
	}
	out := renderToString(p)
	if strings.Contains(out, "< 5") {
		t.Error("label text not XML-escaped")
	}
	if !strings.Contains(out, "&lt; 5") {
		t.Error("escaped label text missing")
	}
}

func TestFitText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		widthMM  float64
		fontSize float64
		want     string
	}{
		{"fits untouched", "pump-1", 30, 3.5, "pump-1"},
		{"clipped with ellipsis", "very-long-identifier-name", 15, 3.5, "very-l…"},
		{"cyrillic runes", "насосная станция", 12, 3.5, "насос…"},
		{"no room at all", "x", 0.1, 3.5, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitText(tt.in, tt.widthMM, tt.fontSize); got != tt.want {
				t.Errorf("fitText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKindFills(t *testing.T) {
	pages := []layout.Page{
		{Nodes: []layout.PlacedNode{{ID: "1", Kind: "valve"}, {ID: "2", Kind: "pump"}}},
		{Nodes: []layout.PlacedNode{{ID: "3", Kind: "tank"}, {ID: "4"}}},
	}
	fills := KindFills(pages)
	if len(fills) != 4 { // three kinds plus the empty default
		t.Fatalf("got %d fills, want 4", len(fills))
	}
	if fills[""] != defaultFill {
		t.Errorf("empty kind fill = %s, want neutral default", fills[""])
	}
	// Assignment is by sorted kind name, independent of encounter order.
	if fills["pump"] != palette[0] || fills["tank"] != palette[1] || fills["valve"] != palette[2] {
		t.Errorf("fills not assigned in sorted kind order: %v", fills)
	}
	if got := UsedKinds(pages); len(got) != 3 || got[0] != "pump" || got[2] != "valve" {
		t.Errorf("UsedKinds = %v, want [pump tank valve]", got)
	}
}

func TestRenderContentAttrOrder(t *testing.T) {
	out := renderToString(testPage())

	medIdx := strings.Index(out, "medium: water")
	powIdx := strings.Index(out, "power: 15 kW")
	if medIdx < 0 || powIdx < 0 || medIdx > powIdx {
		t.Errorf("attribute lines should follow sorted key order (medium at %d, power at %d)", medIdx, powIdx)
	}
}
