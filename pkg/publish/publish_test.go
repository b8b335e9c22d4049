package publish

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetpress/pkg/assemble"
	"sheetpress/pkg/layout"
	"sheetpress/pkg/scene"
)

func buildResult(t *testing.T) *layout.Result {
	t.Helper()
	s := scene.New(scene.Meta{Title: "Quadrants"})
	for _, n := range []scene.Node{
		{ID: "n-a", W: 8, H: 8, X: 10, Y: 390, Placed: true},
		{ID: "n-b", W: 8, H: 8, X: 290, Y: 390, Placed: true},
		{ID: "n-c", W: 8, H: 8, X: 10, Y: 10, Placed: true},
		{ID: "n-d", W: 8, H: 8, X: 290, Y: 10, Placed: true},
	} {
		if err := s.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if err := s.AddConnector(scene.Connector{From: "n-a", To: "n-b"}); err != nil {
		t.Fatalf("AddConnector: %v", err)
	}
	res, err := layout.Build(s, layout.Options{Format: "A4", Scale: 1000})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	p, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := buildResult(t)
	manifest, err := p.Publish(res, nil)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(manifest.Entries) != 4 {
		t.Fatalf("manifest holds %d entries, want 4", len(manifest.Entries))
	}

	for i, e := range manifest.Entries {
		if e.Sheet != assemble.SheetName(i+1) {
			t.Errorf("entry %d sheet = %q", i, e.Sheet)
		}
		if e.Page != i+1 || e.TotalPages != 4 || e.Scale != "1:1000" {
			t.Errorf("entry %d = %+v", i, e)
		}
		html, err := os.ReadFile(filepath.Join(dir, e.Sheet+".html"))
		if err != nil {
			t.Fatalf("read sheet %s: %v", e.Sheet, err)
		}
		if !strings.Contains(string(html), "<svg") {
			t.Errorf("sheet %s does not embed its SVG", e.Sheet)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	// The wire contract carries exactly these four fields.
	for _, e := range entries {
		if len(e) != 4 {
			t.Fatalf("manifest entry carries %d fields, want 4: %v", len(e), e)
		}
		for _, key := range []string{"sheet", "page", "total_pages", "scale"} {
			if _, ok := e[key]; !ok {
				t.Errorf("manifest entry missing %q", key)
			}
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		t.Errorf("index.html missing: %v", err)
	}
}

func TestPublishDeterministic(t *testing.T) {
	res := buildResult(t)

	read := func() map[string][]byte {
		dir := t.TempDir()
		p, err := New(dir)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := p.Publish(res, nil); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		files := map[string][]byte{}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		for _, e := range entries {
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			files[e.Name()] = b
		}
		return files
	}

	first, second := read(), read()
	if len(first) != len(second) {
		t.Fatalf("runs produced %d and %d files", len(first), len(second))
	}
	for name, content := range first {
		if !bytes.Equal(content, second[name]) {
			t.Errorf("file %s differs between identical runs", name)
		}
	}
}

func TestNewRejectsBadDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New accepted an empty output directory")
	}
}
