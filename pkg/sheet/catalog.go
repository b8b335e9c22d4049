package sheet

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"sheetpress/pkg/errors"
)

//go:embed catalog.toml
var builtinCatalog []byte

// AutoFormat is the sentinel format name meaning "let the layout engine
// pick": the smallest catalog format whose drawing area fits the scene at
// some legal scale.
const AutoFormat = "auto"

// Catalog is a read-only table of sheet formats keyed by name. A Catalog is
// loaded once at process start and never mutated afterwards; it is safe for
// concurrent use.
type Catalog struct {
	version int
	formats map[string]Format
}

// catalogFile mirrors the TOML document structure.
type catalogFile struct {
	Version int      `toml:"version"`
	Formats []Format `toml:"format"`
}

// Builtin returns the embedded format catalog (A4, A3 and their landscape
// variants). The embedded table is validated at build time by the package
// tests, so Builtin panics only if the binary itself is corrupt.
func Builtin() *Catalog {
	c, err := parseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("sheet: embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a TOML file and merges it over the built-in
// entries. Entries with names already in the built-in table override them.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "format catalog %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read format catalog %s", path)
	}
	ext, err := parseCatalog(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse format catalog %s", path)
	}

	merged := Builtin()
	maps.Copy(merged.formats, ext.formats)
	if ext.version > merged.version {
		merged.version = ext.version
	}
	return merged, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	formats := make(map[string]Format, len(file.Formats))
	for _, f := range file.Formats {
		if f.Name == "" {
			return nil, fmt.Errorf("format entry without name")
		}
		if f.WidthMM <= 0 || f.HeightMM <= 0 {
			return nil, fmt.Errorf("format %s: non-positive page size", f.Name)
		}
		if f.DPI == 0 {
			f.DPI = DefaultDPI
		}
		if f.DrawingRect().W <= 0 || f.DrawingRect().H <= 0 {
			return nil, fmt.Errorf("format %s: margins and title block leave no drawing area", f.Name)
		}
		formats[strings.ToUpper(f.Name)] = f
	}
	return &Catalog{version: file.Version, formats: formats}, nil
}

// Version returns the catalog's version number.
func (c *Catalog) Version() int { return c.version }

// Lookup returns the format with the given name (case-insensitive).
// Unknown names are an UNSUPPORTED_FORMAT configuration error, never a
// layout decision.
func (c *Catalog) Lookup(name string) (Format, error) {
	f, ok := c.formats[strings.ToUpper(name)]
	if !ok {
		return Format{}, errors.New(errors.ErrCodeUnsupportedFormat,
			"unknown sheet format %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return f, nil
}

// Names returns the catalog's format names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.formats))
}

// ByArea returns the catalog formats sorted by ascending drawing area,
// ties broken by name. Used for automatic format selection: the smallest
// format that fits wins.
func (c *Catalog) ByArea() []Format {
	out := make([]Format, 0, len(c.formats))
	for _, f := range c.formats {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b Format) int {
		aa := a.DrawingRect().W * a.DrawingRect().H
		ba := b.DrawingRect().W * b.DrawingRect().H
		switch {
		case aa < ba:
			return -1
		case aa > ba:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
	return out
}
