package pipeline

import (
	"sheetpress/pkg/layout"
	"sheetpress/pkg/scene"
)

// BuildLayout computes the paginated layout for a scene. This is the
// uncached entry point; the Runner wraps it with content-addressed
// caching.
func BuildLayout(s *scene.Scene, opts Options) (*layout.Result, error) {
	return layout.Build(s, opts.LayoutOptions())
}
