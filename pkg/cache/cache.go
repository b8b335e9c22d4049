// Package cache provides content-addressed caching for pipeline stages.
//
// Scenes, layout results and assembled sheets are cached under SHA-256
// derived keys so unchanged inputs skip recomputation. Backends: a
// file-based cache for CLI usage, a Redis cache for the preview server,
// and a null cache that disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per stage. Scene imports change with their source files,
// layouts and sheets only with their upstream hashes, so the derived
// stages can live longer.
const (
	TTLScene  = 1 * time.Hour
	TTLLayout = 24 * time.Hour
	TTLSheet  = 24 * time.Hour
)

// Cache is the storage backend interface. Implementations must treat Get
// misses as (nil, false, nil), reserving errors for real backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the layout parameters that feed the layout cache key.
// Two runs over the same scene with different options must not share an
// entry.
type LayoutKeyOpts struct {
	Format string
	Scale  int
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// SceneKey keys an imported scene by the hash of its source bytes.
	SceneKey(sourceHash string) string
	// LayoutKey keys a layout result by scene hash and layout options.
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string
	// SheetKey keys one assembled sheet by layout hash and page number.
	SheetKey(layoutHash string, page int) string
}

// DefaultKeyer generates versioned, hashed cache keys. The embedded
// version constants invalidate old entries when a stage's output format
// changes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// Key format versions. Bump when the cached representation changes shape.
const (
	sceneKeyVersion  = "v1"
	layoutKeyVersion = "v1"
	sheetKeyVersion  = "v1"
)

func (k *DefaultKeyer) SceneKey(sourceHash string) string {
	return hashKey("scene", sceneKeyVersion, sourceHash)
}

func (k *DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", layoutKeyVersion, sceneHash, opts.Format, opts.Scale)
}

func (k *DefaultKeyer) SheetKey(layoutHash string, page int) string {
	return hashKey("sheet", sheetKeyVersion, layoutHash, page)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
