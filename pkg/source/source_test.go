package source

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"sheetpress/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	data := []byte(`{
		"meta": {"title": "Pump hall", "format": "A3", "scale": 500},
		"nodes": [
			{"id": "pump-1", "kind": "pump", "w": 10, "h": 6, "x": 5, "y": 3,
			 "attrs": {"power": "15 kW"}},
			{"id": "tank-1", "kind": "tank", "w": 12, "h": 12}
		],
		"connectors": [
			{"from": "pump-1", "to": "tank-1", "directed": true, "label": "DN100", "route": "orthogonal"}
		],
		"labels": [{"text": "hall 2", "x": 40, "y": 20}]
	}`)

	s, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if s.Meta.Title != "Pump hall" || s.Meta.FormatHint != "A3" || s.Meta.ScaleHint != 500 {
		t.Errorf("meta = %+v", s.Meta)
	}
	if s.NodeCount() != 2 || s.ConnectorCount() != 1 || len(s.Labels()) != 1 {
		t.Fatalf("scene holds %d nodes / %d connectors / %d labels",
			s.NodeCount(), s.ConnectorCount(), len(s.Labels()))
	}
	pump, ok := s.Node("pump-1")
	if !ok || !pump.Placed || pump.X != 5 || pump.Attrs["power"] != "15 kW" {
		t.Errorf("pump-1 = %+v", pump)
	}
	if tank, _ := s.Node("tank-1"); tank.Placed {
		t.Error("tank-1 has no coordinates and must be auto-placed")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax error", `{"nodes": [`, errors.ErrCodeInvalidInput},
		{"unknown route", `{"nodes":[{"id":"a","w":1,"h":1},{"id":"b","w":1,"h":1}],
			"connectors":[{"from":"a","to":"b","route":"diagonal"}]}`, errors.ErrCodeInvalidInput},
		{"dangling endpoint", `{"nodes":[{"id":"a","w":1,"h":1}],
			"connectors":[{"from":"a","to":"ghost"}]}`, errors.ErrCodeInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestReadTXT(t *testing.T) {
	data := []byte("# survey export\n12,5;30\nWP-1;40.25;55,75\n\n7;8\n")
	s, err := ReadTXT(data)
	if err != nil {
		t.Fatalf("ReadTXT: %v", err)
	}
	if s.NodeCount() != 3 {
		t.Fatalf("got %d points, want 3", s.NodeCount())
	}
	p1, ok := s.Node("P1")
	if !ok || p1.X != 12.5 || p1.Y != 30 {
		t.Errorf("P1 = %+v", p1)
	}
	wp, ok := s.Node("WP-1")
	if !ok || wp.X != 40.25 || wp.Y != 55.75 {
		t.Errorf("WP-1 = %+v", wp)
	}
	if _, ok := s.Node("P2"); !ok {
		t.Error("unnamed points must number in file order")
	}
	if wp.Kind != pointKind || wp.W != pointNodeSize {
		t.Errorf("imported point carries kind %q size %v", wp.Kind, wp.W)
	}
}

func TestReadTXTBadLine(t *testing.T) {
	_, err := ReadTXT([]byte("1;2;3;4\n"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestReadXML(t *testing.T) {
	data := []byte(`<points title="Boundary">
		<pt id="A" x="0" y="0"/>
		<pt x="10.5" y="20"/>
	</points>`)
	s, err := ReadXML(data)
	if err != nil {
		t.Fatalf("ReadXML: %v", err)
	}
	if s.Meta.Title != "Boundary" || s.NodeCount() != 2 {
		t.Fatalf("title %q, %d nodes", s.Meta.Title, s.NodeCount())
	}
	if _, ok := s.Node("P2"); !ok {
		t.Error("unnamed XML point not numbered by position")
	}
}

func TestLoadDispatch(t *testing.T) {
	if _, err := Load("scene.dwg"); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("unknown extension: got %v, want UNSUPPORTED_FORMAT", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		CREATE TABLE nodes (id TEXT PRIMARY KEY, kind TEXT, w REAL, h REAL,
			x REAL, y REAL, placed INTEGER);
		CREATE TABLE node_attrs (node_id TEXT, key TEXT, value TEXT);
		CREATE TABLE connectors (from_id TEXT, to_id TEXT, directed INTEGER,
			label TEXT, route TEXT, seq INTEGER);
		CREATE TABLE labels (text TEXT, x REAL, y REAL, seq INTEGER);

		INSERT INTO meta VALUES ('title', 'Station plan'), ('scale', '1000');
		INSERT INTO nodes VALUES ('st-1', 'station', 20, 10, 5, 5, 1);
		INSERT INTO nodes VALUES ('st-2', 'station', 20, 10, NULL, NULL, 0);
		INSERT INTO node_attrs VALUES ('st-1', 'voltage', '10 kV');
		INSERT INTO connectors VALUES ('st-1', 'st-2', 1, 'feeder', 'straight', 1);
		INSERT INTO labels VALUES ('north yard', 40, 60, 1);
	`)
	if err != nil {
		t.Fatalf("seed database: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err := ReadSQLite(path)
	if err != nil {
		t.Fatalf("ReadSQLite: %v", err)
	}
	if s.Meta.Title != "Station plan" || s.Meta.ScaleHint != 1000 {
		t.Errorf("meta = %+v", s.Meta)
	}
	if s.NodeCount() != 2 || s.ConnectorCount() != 1 || len(s.Labels()) != 1 {
		t.Fatalf("scene holds %d nodes / %d connectors / %d labels",
			s.NodeCount(), s.ConnectorCount(), len(s.Labels()))
	}
	st1, _ := s.Node("st-1")
	if !st1.Placed || st1.Attrs["voltage"] != "10 kV" {
		t.Errorf("st-1 = %+v", st1)
	}
	if st2, _ := s.Node("st-2"); st2.Placed {
		t.Error("st-2 with NULL coordinates must not be placed")
	}
}

func TestLoadRejectsUnsafeNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"path traversal", "../pump"},
		{"path separator", "hall/pump"},
		{"backslash", `hall\pump`},
		{"control character", "pump\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene.json")
			data := []byte(`{"nodes":[{"id":` + strconv.Quote(tt.id) + `,"w":1,"h":1}]}`)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("id %q: got %v, want INVALID_INPUT", tt.id, err)
			}
		})
	}
}
