package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts get
// isolated namespaces. The pipeline runner uses it to keep per-catalog
// entries apart when an external format catalog is loaded.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "catalog:"+catalogHash+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SceneKey generates a prefixed key for scene caching.
func (k *ScopedKeyer) SceneKey(sourceHash string) string {
	return k.prefix + k.inner.SceneKey(sourceHash)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(sceneHash, opts)
}

// SheetKey generates a prefixed key for assembled sheet caching.
func (k *ScopedKeyer) SheetKey(layoutHash string, page int) string {
	return k.prefix + k.inner.SheetKey(layoutHash, page)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
