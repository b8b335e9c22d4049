// Package source loads scenes from external representations: the native
// JSON contract, semicolon-separated survey point lists, point XML, and a
// relational SQLite store. The file extension selects the importer.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
)

// Load reads a scene from path, dispatching on the file extension:
// .json, .txt, .xml, and .db/.sqlite/.sqlite3 are supported. Node
// identifiers from any source are vetted before the scene is handed
// downstream.
func Load(path string) (*scene.Scene, error) {
	s, err := load(path)
	if err != nil {
		return nil, err
	}
	for _, n := range s.Nodes() {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scene source %s", path)
		}
	}
	return s, nil
}

func load(path string) (*scene.Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return loadFile(path, ReadJSON)
	case ".txt", ".csv":
		return loadFile(path, ReadTXT)
	case ".xml":
		return loadFile(path, ReadXML)
	case ".db", ".sqlite", ".sqlite3":
		return ReadSQLite(path)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported scene source %q (want .json, .txt, .xml or .sqlite)", ext)
	}
}

func loadFile(path string, read func([]byte) (*scene.Scene, error)) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene source %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read scene source %s", path)
	}
	return read(data)
}
