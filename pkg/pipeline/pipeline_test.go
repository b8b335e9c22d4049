package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sheetpress/pkg/cache"
	"sheetpress/pkg/errors"
)

// sourceJSON is a small scene with declared coordinates: two connected
// nodes 40 metres apart, comfortably on one A4 sheet.
const sourceJSON = `{
  "meta": {"title": "Test plant"},
  "nodes": [
    {"id": "pump-1", "kind": "pump", "w": 2, "h": 1, "x": 0, "y": 0},
    {"id": "tank-1", "kind": "tank", "w": 4, "h": 3, "x": 40, "y": 0}
  ],
  "connectors": [
    {"from": "pump-1", "to": "tank-1", "directed": true}
  ]
}`

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plant.json")
	if err := os.WriteFile(path, []byte(sourceJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOptionsValidateForImport(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForImport(); err == nil {
		t.Error("Missing source should fail")
	}

	opts = Options{Source: "plant.json"}
	if err := opts.ValidateForImport(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger default should be set")
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	opts := Options{Source: "plant.json", Format: "A9"}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("Unknown format should fail with UNSUPPORTED_FORMAT, got %v", err)
	}

	opts = Options{Source: "plant.json", Scale: 750}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidScale) {
		t.Errorf("Off-catalog scale should fail with INVALID_SCALE, got %v", err)
	}

	opts = Options{Source: "plant.json", Format: "A4", Scale: 500}
	if err := opts.ValidateForLayout(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Formats == nil {
		t.Error("Catalog default should be set")
	}
}

func TestSetAssembleDefaults(t *testing.T) {
	opts := Options{}
	opts.SetAssembleDefaults()

	if opts.Parallelism != DefaultParallelism {
		t.Errorf("Parallelism should be %d, got %d", DefaultParallelism, opts.Parallelism)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: writeSource(t)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalParallelism := opts.Parallelism
	originalCatalog := opts.Formats

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Parallelism != originalParallelism {
		t.Error("Parallelism changed on second call")
	}
	if opts.Formats != originalCatalog {
		t.Error("Catalog changed on second call")
	}
}

func TestRunnerExecute(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	runner := NewRunner(nil, nil, nil)
	opts := Options{Source: writeSource(t), OutDir: outDir}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Stats.NodeCount != 2 {
		t.Errorf("NodeCount = %d, want 2", result.Stats.NodeCount)
	}
	if result.Stats.ConnectorCount != 1 {
		t.Errorf("ConnectorCount = %d, want 1", result.Stats.ConnectorCount)
	}
	if result.Stats.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", result.Stats.PageCount)
	}
	if len(result.Sheets) != 1 {
		t.Fatalf("Sheets = %d, want 1", len(result.Sheets))
	}
	if !bytes.Contains(result.Sheets[0], []byte("Test plant")) {
		t.Error("Sheet should carry the scene title")
	}
	if result.SceneHash == "" {
		t.Error("SceneHash should be set")
	}
	if result.Manifest == nil || len(result.Manifest.Entries) != 1 {
		t.Fatalf("Manifest entries = %v, want 1", result.Manifest)
	}

	for _, name := range []string{"S1.html", "manifest.json", "index.html"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Missing output file %s: %v", name, err)
		}
	}
}

func TestRunnerExecuteTitleOverride(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{Source: writeSource(t), Title: "Renamed"}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Layout.Title != "Renamed" {
		t.Errorf("Title = %q, want %q", result.Layout.Title, "Renamed")
	}
	if result.Manifest != nil {
		t.Error("Publish stage should be skipped without OutDir")
	}
}

func TestRunnerCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{Source: writeSource(t)}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if first.CacheInfo.SceneHit || first.CacheInfo.LayoutHit || first.CacheInfo.SheetHit {
		t.Errorf("First run should miss everywhere, got %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if !second.CacheInfo.SceneHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.SheetHit {
		t.Errorf("Second run should hit everywhere, got %+v", second.CacheInfo)
	}

	if len(first.Sheets) != len(second.Sheets) {
		t.Fatalf("Sheet count differs: %d vs %d", len(first.Sheets), len(second.Sheets))
	}
	for i := range first.Sheets {
		if !bytes.Equal(first.Sheets[i], second.Sheets[i]) {
			t.Errorf("Sheet %d differs between cached and computed run", i+1)
		}
	}

	refreshed, err := runner.Execute(ctx, Options{Source: opts.Source, Refresh: true})
	if err != nil {
		t.Fatalf("Refresh run failed: %v", err)
	}
	if refreshed.CacheInfo.SceneHit || refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.SheetHit {
		t.Errorf("Refresh run should bypass the cache, got %+v", refreshed.CacheInfo)
	}
}

func TestRunnerImportMissingSource(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Import(context.Background(), Options{Source: filepath.Join(t.TempDir(), "missing.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Missing source should fail with FILE_NOT_FOUND, got %v", err)
	}
}

func TestAssembleSheetsOrder(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	// Four declared corners of a 300x400 metre site paginate to four
	// sheets at 1:1000 on A4.
	src := filepath.Join(t.TempDir(), "site.json")
	doc := `{
  "meta": {"title": "Site", "format": "A4", "scale": 1000},
  "nodes": [
    {"id": "n-a", "kind": "station", "w": 4, "h": 4, "x": 0, "y": 400},
    {"id": "n-b", "kind": "station", "w": 4, "h": 4, "x": 300, "y": 400},
    {"id": "n-c", "kind": "station", "w": 4, "h": 4, "x": 0, "y": 0},
    {"id": "n-d", "kind": "station", "w": 4, "h": 4, "x": 300, "y": 0}
  ]
}`
	if err := os.WriteFile(src, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := Options{Source: src, Parallelism: 2}
	s, err := runner.Import(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := runner.BuildLayout(ctx, s, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.PageCount() < 2 {
		t.Fatalf("Expected pagination, got %d page(s)", res.PageCount())
	}

	sheets, err := AssembleSheets(ctx, res, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != res.PageCount() {
		t.Fatalf("Sheets = %d, want %d", len(sheets), res.PageCount())
	}
	// Sheet i must be the assembly of page i regardless of worker
	// completion order; the embedded sheet number proves the slot.
	for i, page := range res.Pages {
		want := fmt.Sprintf("Sheet %d of %d", page.Index, page.Total)
		if !bytes.Contains(sheets[i], []byte(want)) {
			t.Errorf("Sheet slot %d does not contain %q", i, want)
		}
	}
}

func TestRunnerLayoutCacheScopedByCatalog(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	src := writeSource(t)
	s, err := runner.Import(ctx, Options{Source: src})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if _, hit, err := runner.BuildLayoutWithCacheInfo(ctx, s, Options{Source: src, Format: "A4"}); err != nil {
		t.Fatalf("Builtin-catalog run failed: %v", err)
	} else if hit {
		t.Error("First builtin-catalog run should miss")
	}
	if _, hit, err := runner.BuildLayoutWithCacheInfo(ctx, s, Options{Source: src, Format: "A4"}); err != nil {
		t.Fatalf("Repeat builtin-catalog run failed: %v", err)
	} else if !hit {
		t.Error("Repeat builtin-catalog run should hit")
	}

	// An external catalog that redefines A4 with a wider page. Same scene,
	// same format name and scale, so only the keyer scoping keeps this run
	// from reusing the builtin-catalog entry.
	const wideA4 = `[[format]]
name = "A4"
width_mm = 420.0
height_mm = 297.0
margin_left_mm = 20.0
margin_right_mm = 10.0
margin_top_mm = 10.0
margin_bottom_mm = 10.0
title_block_h_mm = 30.0
`
	catalogPath := filepath.Join(t.TempDir(), "formats.toml")
	if err := os.WriteFile(catalogPath, []byte(wideA4), 0o644); err != nil {
		t.Fatal(err)
	}

	custom := Options{Source: src, Format: "A4", Catalog: catalogPath}
	res, hit, err := runner.BuildLayoutWithCacheInfo(ctx, s, custom)
	if err != nil {
		t.Fatalf("External-catalog run failed: %v", err)
	}
	if hit {
		t.Error("External-catalog run must not reuse the builtin-catalog entry")
	}
	if res.Format.WidthMM != 420 {
		t.Errorf("Format width = %v, want the external catalog's 420", res.Format.WidthMM)
	}

	if _, hit, err := runner.BuildLayoutWithCacheInfo(ctx, s, custom); err != nil {
		t.Fatalf("Repeat external-catalog run failed: %v", err)
	} else if !hit {
		t.Error("Repeat external-catalog run should hit")
	}
}
