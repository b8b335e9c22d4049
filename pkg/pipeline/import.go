package pipeline

import (
	"sheetpress/pkg/scene"
	"sheetpress/pkg/source"
)

// Import reads the source file named in the options and normalizes it
// into a Scene. A Title option overrides whatever title the source
// carries, so one source can be published under several names without
// editing the file.
func Import(opts Options) (*scene.Scene, error) {
	s, err := source.Load(opts.Source)
	if err != nil {
		return nil, err
	}
	if opts.Title != "" {
		s.Meta.Title = opts.Title
	}
	return s, nil
}
