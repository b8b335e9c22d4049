// Package publish writes the final deliverable: one HTML document per
// sheet with the SVG embedded inline, a machine-readable manifest, and an
// index page linking the set together. Output is fully self-contained and
// byte-stable for identical input.
package publish

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"sheetpress/pkg/assemble"
	"sheetpress/pkg/errors"
	"sheetpress/pkg/layout"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ManifestEntry describes one published sheet. Field order matches the
// manifest wire contract.
type ManifestEntry struct {
	Sheet      string `json:"sheet"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Scale      string `json:"scale"`
}

// Manifest is the machine-readable description of a published sheet set.
type Manifest struct {
	Entries []ManifestEntry
}

// Publisher writes sheet sets to a directory.
type Publisher struct {
	outDir string
	tmpl   *template.Template
}

// New creates a Publisher rooted at outDir. The directory is created if
// missing; the path itself is validated first.
func New(outDir string) (*Publisher, error) {
	if err := errors.ValidateOutputDir(outDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", outDir)
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded templates")
	}
	return &Publisher{outDir: outDir, tmpl: tmpl}, nil
}

// Dir returns the publisher's output directory.
func (p *Publisher) Dir() string { return p.outDir }

type sheetPage struct {
	Title    string
	Page     int
	Total    int
	Scale    string
	Prev     string
	PrevPage int
	Next     string
	NextPage int
	SVG      template.HTML
}

// Publish writes every sheet of a layout result plus manifest.json and
// index.html. It returns the manifest it wrote. Sheets are emitted in page
// order; a failed write aborts the run with the partial output left on
// disk for inspection.
//
// When sheets is non-nil it must hold one pre-assembled SVG document per
// page in page order (as produced by the pipeline's assemble stage);
// otherwise the sheets are assembled here.
func (p *Publisher) Publish(res *layout.Result, sheets [][]byte) (*Manifest, error) {
	if sheets != nil && len(sheets) != len(res.Pages) {
		return nil, errors.New(errors.ErrCodeInternal,
			"have %d pre-assembled sheets for %d pages", len(sheets), len(res.Pages))
	}
	doc := assemble.NewDoc(res)
	title := res.Title
	if title == "" {
		title = "Untitled drawing"
	}

	manifest := &Manifest{Entries: make([]ManifestEntry, 0, len(res.Pages))}
	for i, page := range res.Pages {
		name := assemble.SheetName(page.Index)
		// Sheet names become file names on disk; refuse anything that
		// would escape the output directory.
		if err := errors.ValidateSheetName(name); err != nil {
			return nil, err
		}
		var svg []byte
		if sheets != nil {
			svg = sheets[i]
		} else {
			svg = assemble.Page(page, doc)
		}

		data := sheetPage{
			Title: title,
			Page:  page.Index,
			Total: page.Total,
			Scale: fmt.Sprintf("1:%d", page.Scale),
			SVG:   template.HTML(svg),
		}
		if page.Index > 1 {
			data.Prev = assemble.SheetName(page.Index - 1)
			data.PrevPage = page.Index - 1
		}
		if page.Index < page.Total {
			data.Next = assemble.SheetName(page.Index + 1)
			data.NextPage = page.Index + 1
		}

		if err := p.writeTemplate(name+".html", "sheet.html.tmpl", data); err != nil {
			return nil, err
		}
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			Sheet:      name,
			Page:       page.Index,
			TotalPages: page.Total,
			Scale:      data.Scale,
		})
	}

	if err := p.writeManifest(manifest); err != nil {
		return nil, err
	}
	if err := p.writeIndex(title, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (p *Publisher) writeTemplate(filename, tmplName string, data any) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, tmplName, data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render %s", filename)
	}
	return p.writeFile(filename, buf.Bytes())
}

func (p *Publisher) writeManifest(m *Manifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.Entries); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return p.writeFile("manifest.json", buf.Bytes())
}

func (p *Publisher) writeIndex(title string, m *Manifest) error {
	data := struct {
		Title   string
		Entries []ManifestEntry
	}{Title: title, Entries: m.Entries}
	return p.writeTemplate("index.html", "index.html.tmpl", data)
}

func (p *Publisher) writeFile(filename string, content []byte) error {
	path := filepath.Join(p.outDir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
