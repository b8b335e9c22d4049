package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func buildScene(t *testing.T) *Scene {
	t.Helper()
	s := New(Meta{Title: "Plant", FormatHint: "A3", ScaleHint: 500})
	nodes := []Node{
		{ID: "tank-1", Kind: "tank", W: 4, H: 3, X: 12, Y: 8, Placed: true, Attrs: Attrs{"volume": "20m3"}},
		{ID: "pump-1", Kind: "pump", W: 2, H: 1},
		{ID: "valve-1", Kind: "valve", W: 1, H: 1},
	}
	for _, n := range nodes {
		if err := s.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddConnector(Connector{From: "pump-1", To: "tank-1", Directed: true, Label: "DN50"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddConnector(Connector{From: "tank-1", To: "valve-1", Route: RouteOrthogonal}); err != nil {
		t.Fatal(err)
	}
	s.AddLabel(Label{Text: "Area 1", X: 5, Y: 5})
	return s
}

func TestAddNodeErrors(t *testing.T) {
	s := New(Meta{})
	tests := []struct {
		name string
		node Node
		want error
	}{
		{"empty ID", Node{W: 1, H: 1}, ErrInvalidNodeID},
		{"zero width", Node{ID: "a", H: 1}, ErrInvalidSize},
		{"negative height", Node{ID: "a", W: 1, H: -2}, ErrInvalidSize},
	}
	for _, tt := range tests {
		if err := s.AddNode(tt.node); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}

	if err := s.AddNode(Node{ID: "a", W: 1, H: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(Node{ID: "a", W: 2, H: 2}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddConnectorUnknownEndpoint(t *testing.T) {
	s := New(Meta{})
	if err := s.AddNode(Node{ID: "a", W: 1, H: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddConnector(Connector{From: "a", To: "ghost"}); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("got %v, want ErrUnknownEndpoint", err)
	}
	if got := s.ConnectorCount(); got != 0 {
		t.Errorf("rejected connector was stored, count = %d", got)
	}
}

func TestNodesSortedByID(t *testing.T) {
	s := buildScene(t)
	nodes := s.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	want := []string{"pump-1", "tank-1", "valve-1"}
	for i, n := range nodes {
		if n.ID != want[i] {
			t.Errorf("nodes[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestConnectorRouteDefault(t *testing.T) {
	s := buildScene(t)
	conns := s.Connectors()
	if conns[0].Route != RouteStraight {
		t.Errorf("empty route should default to straight, got %q", conns[0].Route)
	}
	if conns[1].Route != RouteOrthogonal {
		t.Errorf("route = %q, want orthogonal", conns[1].Route)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := buildScene(t)
	cp := s.Clone()

	n, _ := cp.Node("tank-1")
	n.Attrs["volume"] = "changed"
	n.X = 99

	orig, _ := s.Node("tank-1")
	if orig.Attrs["volume"] != "20m3" {
		t.Error("clone shares attrs with original")
	}
	if orig.X != 12 {
		t.Error("clone shares node values with original")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := buildScene(t)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var back Scene
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if back.Meta != s.Meta {
		t.Errorf("meta = %+v, want %+v", back.Meta, s.Meta)
	}
	if back.NodeCount() != s.NodeCount() || back.ConnectorCount() != s.ConnectorCount() {
		t.Fatalf("counts differ: %d/%d vs %d/%d",
			back.NodeCount(), back.ConnectorCount(), s.NodeCount(), s.ConnectorCount())
	}

	tank, ok := back.Node("tank-1")
	if !ok {
		t.Fatal("tank-1 missing after round trip")
	}
	if !tank.Placed || tank.X != 12 || tank.Y != 8 {
		t.Errorf("declared position lost: %+v", tank)
	}
	pump, _ := back.Node("pump-1")
	if pump.Placed {
		t.Error("auto-placed node became declared")
	}

	// Canonical encoding: marshaling the decoded scene reproduces the
	// original bytes.
	again, err := json.Marshal(&back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("encoding not canonical:\n%s\nvs\n%s", data, again)
	}
}
