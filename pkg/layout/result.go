// Package layout computes absolute page-space coordinates for scene content.
//
// The layout engine turns a validated [scene.Scene] into a [Result]: an
// ordered sequence of pages, each carrying a sheet format, a selected scale
// and the subset of nodes, connectors and labels assigned to it with
// computed coordinates. The pipeline is purely computational and strictly
// deterministic — identical input always yields an identical Result, which
// downstream rendering turns into byte-identical documents.
//
// The stages are: scale selection from a fixed discrete catalog, placement
// (declared coordinates or a deterministic grid), overlap repair, connector
// routing, and pagination when the content exceeds one sheet at the minimum
// legible scale.
package layout

import (
	"sheetpress/pkg/scene"
	"sheetpress/pkg/sheet"
)

// Point is a position in page millimetres. The origin is the drawing
// area's top-left corner (after margin offset); Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlacedNode is a scene node with computed page-space geometry.
// X/Y is the top-left corner of the node box in page millimetres.
type PlacedNode struct {
	ID    string      `json:"id"`
	Kind  string      `json:"kind,omitempty"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	W     float64     `json:"w"`
	H     float64     `json:"h"`
	Attrs scene.Attrs `json:"attrs,omitempty"`
}

// CenterX returns the horizontal center of the node box.
func (n PlacedNode) CenterX() float64 { return n.X + n.W/2 }

// CenterY returns the vertical center of the node box.
func (n PlacedNode) CenterY() float64 { return n.Y + n.H/2 }

// RoutedConnector is a connector with a computed path on one page.
//
// When a connector crosses a page boundary, each page carries the clipped
// portion of the path plus a continuation reference to the adjacent page.
// ContinuesFrom refers to the page holding the preceding portion (the cut
// at Points[0]); ContinuesTo refers to the page holding the following
// portion (the cut at the last point). Zero means the corresponding end
// terminates at a node on this page.
type RoutedConnector struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Directed bool    `json:"directed,omitempty"`
	Label    string  `json:"label,omitempty"`
	Points   []Point `json:"points"`

	ContinuesFrom int `json:"continues_from,omitempty"`
	ContinuesTo   int `json:"continues_to,omitempty"`
}

// PlacedLabel is a free-standing label with page-space anchor coordinates.
type PlacedLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Page owns one sheet's worth of positioned content. Pages are produced
// once by Build, immutable thereafter, and consumed in order by rendering.
// The order is significant: it must match the manifest order downstream.
type Page struct {
	Index  int          `json:"index"` // 1-based page number
	Total  int          `json:"total"` // total page count in the Result
	Format sheet.Format `json:"format"`
	Scale  int          `json:"scale"` // denominator N of "1:N"

	Nodes      []PlacedNode      `json:"nodes"`
	Connectors []RoutedConnector `json:"connectors"`
	Labels     []PlacedLabel     `json:"labels,omitempty"`
}

// Result is the layout engine's output: an ordered sequence of pages.
type Result struct {
	Pages  []Page       `json:"pages"`
	Format sheet.Format `json:"format"`
	Scale  int          `json:"scale"`
	Title  string       `json:"title,omitempty"`
}

// PageCount returns the number of pages.
func (r *Result) PageCount() int { return len(r.Pages) }
