// Package pkg provides the core libraries for Sheetpress schematic sheet generation.
//
// # Overview
//
// Sheetpress turns an abstract scene description (equipment nodes, connectors,
// free labels) into a paginated set of engineering-style schematic sheets with
// frames, title blocks, scale bars and legends. The pkg directory is organized
// into the following areas:
//
//  1. [scene] - Scene model (nodes, connectors, labels, metadata)
//  2. [layout] - Scale selection, grid placement, overlap repair, pagination
//  3. [render] - Low-level SVG primitives (symbols, connectors, text)
//  4. [assemble] - Sheet assembly (frame, title block, scale bar, legend)
//  5. [publish] - HTML output, manifest and index generation
//  6. [pipeline] - Orchestration (import → layout → assemble → publish)
//  7. [cache], [sheet], [source], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through Sheetpress:
//
//	Scene file (JSON/XML/CSV/SQLite)
//	         ↓
//	    [source] package (decode into a scene)
//	         ↓
//	    [layout] package (scale, placement, pagination)
//	         ↓
//	    [assemble] package (compose framed SVG sheets)
//	         ↓
//	    [publish] package (HTML pages + manifest + index)
//
// # Quick Start
//
// Build a layout and publish a sheet set:
//
//	import (
//	    "sheetpress/pkg/layout"
//	    "sheetpress/pkg/publish"
//	    "sheetpress/pkg/source"
//	)
//
//	// 1. Load the scene
//	s, _ := source.Load("plant.json")
//
//	// 2. Compute the layout
//	res, _ := layout.Build(s, layout.Options{})
//
//	// 3. Publish framed sheets as HTML
//	p, _ := publish.New("out")
//	manifest, _ := p.Publish(res, nil)
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewFileCache(dir), nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{Source: "plant.json", OutDir: "out"})
//
// # Main Packages
//
// [scene] - The scene model: identified nodes with real-world dimensions in
// metres and optional placement, connectors between node ports, and free
// text labels. Scenes serialize to a canonical JSON form used for caching
// and content hashing.
//
// [source] - Scene decoders for JSON, XML, delimited text and SQLite input
// files, selected by file extension.
//
// [sheet] - The sheet format catalog: ISO paper sizes with margins, drawing
// areas and title block reservations. Formats load from the built-in catalog
// or an external TOML file.
//
// [layout] - The layout engine. Picks a drawing scale from the standard
// series, places unpositioned nodes on a grid, repairs overlaps, routes
// connectors, and paginates the drawing across sheets with continuation
// markers where connectors cross page boundaries.
//
// [render] - SVG primitive emission: node symbols, connector paths with
// arrowheads, label text, and the shared style table.
//
// [assemble] - Composes one layout page into a complete sheet: border frame,
// title block, scale bar, legend, and the drawing content mapped from
// real-world to paper coordinates.
//
// [publish] - Writes the published artifact tree: one HTML page per sheet,
// a manifest.json describing the set, and an index page linking the sheets.
//
// [pipeline] - Orchestrates the four stages with per-stage caching and
// parallel sheet assembly. Used by the CLI for both generate and serve.
//
// [cache] - Stage cache interface with file, Redis and null implementations,
// plus content hashing and key derivation.
//
// [errors] - Structured error codes shared across packages, matched with
// errors.Is.
//
// [observability] - Optional hooks for pipeline stages, cache events and
// preview-server requests.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Use an external sheet format catalog:
//
//	formats, _ := sheet.Load("formats.toml")
//	res, _ := layout.Build(s, layout.Options{Catalog: formats, Format: "A3"})
//
// Force a scale instead of auto-selection:
//
//	res, _ := layout.Build(s, layout.Options{Scale: 500})
//
// Assemble a single page without publishing:
//
//	doc := assemble.NewDoc(res)
//	svg := assemble.Page(res.Pages[0], doc)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//
// [scene]: https://pkg.go.dev/sheetpress/pkg/scene
// [source]: https://pkg.go.dev/sheetpress/pkg/source
// [sheet]: https://pkg.go.dev/sheetpress/pkg/sheet
// [layout]: https://pkg.go.dev/sheetpress/pkg/layout
// [render]: https://pkg.go.dev/sheetpress/pkg/render
// [assemble]: https://pkg.go.dev/sheetpress/pkg/assemble
// [publish]: https://pkg.go.dev/sheetpress/pkg/publish
// [pipeline]: https://pkg.go.dev/sheetpress/pkg/pipeline
// [cache]: https://pkg.go.dev/sheetpress/pkg/cache
// [errors]: https://pkg.go.dev/sheetpress/pkg/errors
// [observability]: https://pkg.go.dev/sheetpress/pkg/observability
// [buildinfo]: https://pkg.go.dev/sheetpress/pkg/buildinfo
package pkg
