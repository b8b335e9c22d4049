// Package pipeline provides the core sheet generation pipeline for
// sheetpress.
//
// This package implements the complete import → layout → assemble →
// publish pipeline that can be used by the CLI and the preview server. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Import: Read a source file and normalize it into a Scene
//  2. Layout: Compute page-space positions, scale and pagination
//  3. Assemble: Render each page into a complete SVG sheet
//  4. Publish: Write HTML sheets, manifest.json and index.html
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source: "plant.json",
//	    OutDir: "out",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Sheets[0]
//
// Run individual stages:
//
//	// Import only
//	s, err := runner.Import(ctx, opts)
//
//	// Layout with an existing scene
//	res, err := runner.BuildLayout(ctx, s, opts)
//
//	// Assemble with an existing layout
//	sheets, err := runner.Assemble(ctx, res, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"sheetpress/pkg/cache"
	"sheetpress/pkg/errors"
	"sheetpress/pkg/layout"
	"sheetpress/pkg/publish"
	"sheetpress/pkg/scene"
	"sheetpress/pkg/sheet"
)

// DefaultParallelism bounds the number of sheets assembled concurrently.
// Sheet assembly is CPU-bound string building, so a small fixed fan-out
// is enough; large sheet sets gain nothing from unbounded goroutines.
const DefaultParallelism = 4

// Options contains all configuration for the sheet pipeline.
// This struct supports JSON serialization for preview-server requests.
type Options struct {
	// Import options
	Source  string `json:"source"`            // path to the source file
	Title   string `json:"title,omitempty"`   // overrides the scene's own title
	Refresh bool   `json:"refresh,omitempty"` // bypass and rewrite the cache

	// Layout options
	Format  string `json:"format,omitempty"`  // sheet format name, empty means auto
	Scale   int    `json:"scale,omitempty"`   // scale denominator, 0 means auto
	Catalog string `json:"catalog,omitempty"` // external format catalog path

	// Assemble options
	Parallelism int `json:"parallelism,omitempty"`

	// Publish options
	OutDir string `json:"out_dir,omitempty"` // empty skips the publish stage

	// Runtime options (not serialized)
	Logger  *log.Logger    `json:"-"`
	Formats *sheet.Catalog `json:"-"` // preloaded catalog, overrides Catalog

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the imported content model.
	Scene *scene.Scene

	// SceneHash is the content hash of the canonical scene encoding.
	SceneHash string

	// Layout is the paginated layout.
	Layout *layout.Result

	// Sheets holds one assembled SVG document per page, in page order.
	Sheets [][]byte

	// Manifest describes the published sheet set. Nil unless the publish
	// stage ran.
	Manifest *publish.Manifest

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	ConnectorCount int
	PageCount      int
	ImportTime     time.Duration
	LayoutTime     time.Duration
	AssembleTime   time.Duration
	PublishTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // whether the imported scene came from cache
	LayoutHit bool // whether the layout came from cache
	SheetHit  bool // whether all assembled sheets came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent - calling it multiple
// times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForImport(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetAssembleDefaults()
	if o.OutDir != "" {
		if err := errors.ValidateOutputDir(o.OutDir); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForImport checks required fields for importing.
func (o *Options) ValidateForImport() error {
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	o.setLoggerDefault()
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
// Loads the format catalog when only a path was given, and checks that an
// explicit format or scale exists in the catalog.
func (o *Options) ValidateForLayout() error {
	o.setLoggerDefault()
	if o.Formats == nil {
		if o.Catalog != "" {
			c, err := sheet.Load(o.Catalog)
			if err != nil {
				return err
			}
			o.Formats = c
		} else {
			o.Formats = sheet.Builtin()
		}
	}
	if o.Format != "" {
		if _, err := o.Formats.Lookup(o.Format); err != nil {
			return err
		}
	}
	if o.Scale != 0 && !validScale(o.Scale) {
		return errors.New(errors.ErrCodeInvalidScale,
			"scale 1:%d is not in the catalog %v", o.Scale, layout.DefaultScales)
	}
	return nil
}

// SetAssembleDefaults sets default values for sheet assembly.
func (o *Options) SetAssembleDefaults() {
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	o.setLoggerDefault()
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions translates pipeline options into layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Format:  o.Format,
		Scale:   o.Scale,
		Catalog: o.Formats,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Format: o.Format,
		Scale:  o.Scale,
	}
}

func validScale(n int) bool {
	for _, s := range layout.DefaultScales {
		if s == n {
			return true
		}
	}
	return false
}
