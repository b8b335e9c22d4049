package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"sheetpress/pkg/cache"
	"sheetpress/pkg/errors"
	"sheetpress/pkg/layout"
	"sheetpress/pkg/observability"
	"sheetpress/pkg/publish"
	"sheetpress/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and preview server can use this to avoid duplicating caching
// logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete import → layout → assemble → publish pipeline
// with caching. The publish stage is skipped when OutDir is empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Import
	importStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageImport)
	s, sceneHit, err := r.ImportWithCacheInfo(ctx, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageImport, time.Since(importStart), err)
	if err != nil {
		return nil, err
	}
	result.Scene = s
	result.Stats.ImportTime = time.Since(importStart)
	result.Stats.NodeCount = s.NodeCount()
	result.Stats.ConnectorCount = s.ConnectorCount()
	result.CacheInfo.SceneHit = sceneHit

	// Compute scene hash for cache keys and API responses
	if sceneData, err := json.Marshal(s); err == nil {
		result.SceneHash = cache.Hash(sceneData)
	}

	r.Logger.Info("imported scene",
		"nodes", s.NodeCount(),
		"connectors", s.ConnectorCount(),
		"duration", result.Stats.ImportTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageLayout)
	res, layoutHit, err := r.BuildLayoutWithCacheInfo(ctx, s, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageLayout, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PageCount = res.PageCount()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"format", res.Format.Name,
		"scale", res.Scale,
		"pages", res.PageCount(),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Assemble
	assembleStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageAssemble)
	sheets, sheetHit, err := r.AssembleWithCacheInfo(ctx, res, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageAssemble, time.Since(assembleStart), err)
	if err != nil {
		return nil, err
	}
	result.Sheets = sheets
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.CacheInfo.SheetHit = sheetHit

	r.Logger.Info("assembled sheets",
		"sheets", len(sheets),
		"duration", result.Stats.AssembleTime)

	// Stage 4: Publish
	if opts.OutDir != "" {
		publishStart := time.Now()
		observability.Pipeline().OnStageStart(ctx, observability.StagePublish)
		manifest, err := r.publish(res, sheets, opts)
		observability.Pipeline().OnStageComplete(ctx, observability.StagePublish, time.Since(publishStart), err)
		if err != nil {
			return nil, err
		}
		result.Manifest = manifest
		result.Stats.PublishTime = time.Since(publishStart)

		r.Logger.Info("published sheet set",
			"dir", opts.OutDir,
			"sheets", len(manifest.Entries),
			"duration", result.Stats.PublishTime)
	}

	return result, nil
}

func (r *Runner) publish(res *layout.Result, sheets [][]byte, opts Options) (*publish.Manifest, error) {
	p, err := publish.New(opts.OutDir)
	if err != nil {
		return nil, err
	}
	return p.Publish(res, sheets)
}

// ImportWithCacheInfo imports the source with caching and returns cache
// hit info. The cache key hashes the raw source bytes plus the file
// extension, since the extension selects the reader.
func (r *Runner) ImportWithCacheInfo(ctx context.Context, opts Options) (*scene.Scene, bool, error) {
	if err := opts.ValidateForImport(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	raw, err := os.ReadFile(opts.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "source file %s", opts.Source)
		}
		return nil, false, errors.Wrap(errors.ErrCodeInvalidPath, err, "read source file %s", opts.Source)
	}
	material := append([]byte(filepath.Ext(opts.Source)+"\n"+opts.Title+"\n"), raw...)
	cacheKey := r.Keyer.SceneKey(cache.Hash(material))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var s scene.Scene
			if err := json.Unmarshal(data, &s); err == nil {
				observability.Cache().OnCacheHit(ctx, "scene")
				return &s, true, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "scene")

	// Import
	s, err := Import(opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(s); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLScene)
		observability.Cache().OnCacheSet(ctx, "scene", len(data))
	}

	return s, false, nil // Cache miss
}

// Import is a convenience wrapper that calls ImportWithCacheInfo and discards the cache hit info.
func (r *Runner) Import(ctx context.Context, opts Options) (*scene.Scene, error) {
	s, _, err := r.ImportWithCacheInfo(ctx, opts)
	return s, err
}

// keyerFor returns the cache keyer for a run. When an external format
// catalog is in play its content hash scopes every key, so layouts built
// against different catalogs never share cache entries even when the
// format names collide.
func (r *Runner) keyerFor(opts Options) (cache.Keyer, error) {
	if opts.Catalog == "" {
		return r.Keyer, nil
	}
	data, err := os.ReadFile(opts.Catalog)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read catalog %s", opts.Catalog)
	}
	return cache.NewScopedKeyer(r.Keyer, "catalog:"+cache.Hash(data)[:16]+":"), nil
}

// BuildLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) BuildLayoutWithCacheInfo(ctx context.Context, s *scene.Scene, opts Options) (*layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	sceneData, err := json.Marshal(s)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize scene for cache key")
	}
	sceneHash := cache.Hash(sceneData)
	keyer, err := r.keyerFor(opts)
	if err != nil {
		return nil, false, err
	}
	cacheKey := keyer.LayoutKey(sceneHash, opts.LayoutKeyOpts())

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	// Build layout
	res, err := BuildLayout(s, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return res, false, nil // Cache miss
}

// BuildLayout is a convenience wrapper that calls BuildLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) BuildLayout(ctx context.Context, s *scene.Scene, opts Options) (*layout.Result, error) {
	res, _, err := r.BuildLayoutWithCacheInfo(ctx, s, opts)
	return res, err
}

// AssembleWithCacheInfo assembles all sheets with caching and returns
// cache hit info. Each sheet is cached under its own key; the hit flag
// reports whether every sheet came from cache.
func (r *Runner) AssembleWithCacheInfo(ctx context.Context, res *layout.Result, opts Options) ([][]byte, bool, error) {
	opts.SetAssembleDefaults()
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all sheets from cache
	if !opts.Refresh {
		allCached := true
		sheets := make([][]byte, len(res.Pages))
		for i, page := range res.Pages {
			cacheKey := r.Keyer.SheetKey(layoutHash, page.Index)
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			sheets[i] = data
		}
		if allCached {
			observability.Cache().OnCacheHit(ctx, "sheet")
			return sheets, true, nil // All sheets from cache
		}
	}
	observability.Cache().OnCacheMiss(ctx, "sheet")

	// Assemble all sheets
	sheets, err := AssembleSheets(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each sheet
	for i, page := range res.Pages {
		cacheKey := r.Keyer.SheetKey(layoutHash, page.Index)
		_ = r.Cache.Set(ctx, cacheKey, sheets[i], cache.TTLSheet)
		observability.Cache().OnCacheSet(ctx, "sheet", len(sheets[i]))
	}

	return sheets, false, nil // Cache miss
}

// Assemble is a convenience wrapper that calls AssembleWithCacheInfo and discards the cache hit info.
func (r *Runner) Assemble(ctx context.Context, res *layout.Result, opts Options) ([][]byte, error) {
	sheets, _, err := r.AssembleWithCacheInfo(ctx, res, opts)
	return sheets, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
