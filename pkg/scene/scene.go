// Package scene defines the normalized drawable content model for sheetpress.
//
// A Scene is the full logical content of one document — nodes, connectors and
// free-standing labels — independent of any physical page. Scenes are produced
// by the data-acquisition layer (pkg/source) and consumed by the layout engine
// (pkg/layout). A Scene must pass Validate before layout: connector endpoints
// have to reference existing node identifiers.
//
// Coordinates and nominal sizes are in domain units (metres). Nodes may carry
// declared coordinates; nodes without coordinates are auto-placed by the layout
// engine on a deterministic grid.
package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Scene.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Scene.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique within a Scene.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by [Scene.AddConnector] and
	// [Scene.Validate] when a connector references a node that does not exist.
	ErrUnknownEndpoint = errors.New("connector references unknown node")

	// ErrInvalidSize is returned by [Scene.AddNode] when a node's nominal
	// width or height is not positive.
	ErrInvalidSize = errors.New("node size must be positive")
)

// Route selects how a connector path is drawn between its endpoints.
type Route string

const (
	// RouteStraight draws the direct segment between the nearest boundary
	// points of the two nodes.
	RouteStraight Route = "straight"
	// RouteOrthogonal draws an axis-aligned path with a single bend, choosing
	// the bend direction that minimizes path length.
	RouteOrthogonal Route = "orthogonal"
)

// Attrs stores a node's key/value attributes rendered as text lines inside the
// node's box. Attrs maps are never nil after AddNode.
type Attrs map[string]string

// Node is a placed entity with a semantic kind, a nominal size in domain
// units, and attributes rendered as text. Nodes are owned exclusively by
// their Scene.
//
// X and Y are the node's declared center in domain coordinates. Nodes with
// Placed == false have no declared position and are auto-placed.
type Node struct {
	ID     string  // unique identifier, also the display label
	Kind   string  // semantic tag (e.g. "station", "cabinet")
	W, H   float64 // nominal size in domain units
	X, Y   float64 // declared center, valid only when Placed
	Placed bool    // whether X/Y carry a declared position
	Attrs  Attrs   // key/value attributes, rendered as text
}

// Connector is a relation between two node identifiers. Connectors are owned
// exclusively by their Scene; endpoints must reference existing nodes.
type Connector struct {
	From, To string
	Directed bool   // draw an arrowhead at To
	Label    string // optional, placed at path midpoint
	Route    Route  // straight or orthogonal; empty means straight
}

// Label is free-standing text anchored at a domain coordinate.
type Label struct {
	Text string
	X, Y float64
}

// Meta holds document-level metadata.
type Meta struct {
	Title      string // sheet header title
	FormatHint string // requested sheet format name, empty means auto
	ScaleHint  int    // requested scale denominator, 0 means auto
}

// Scene is the full set of drawable content for one logical document.
// The zero value is not usable — use New.
//
// Scene is not safe for concurrent mutation. Once handed to the layout
// engine it must be treated as immutable.
type Scene struct {
	Meta Meta

	nodes      map[string]*Node
	connectors []Connector
	labels     []Label
}

// New creates an empty Scene with the given metadata.
func New(meta Meta) *Scene {
	return &Scene{
		Meta:  meta,
		nodes: make(map[string]*Node),
	}
}

// AddNode adds a node to the scene. The node's Attrs map is initialized if
// nil. Returns ErrInvalidNodeID, ErrInvalidSize or ErrDuplicateNodeID on
// constraint violations.
func (s *Scene) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.W <= 0 || n.H <= 0 {
		return fmt.Errorf("node %s: %w", n.ID, ErrInvalidSize)
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	if n.Attrs == nil {
		n.Attrs = make(Attrs)
	}
	s.nodes[n.ID] = &n
	return nil
}

// AddConnector adds a connector. Both endpoints must already exist.
func (s *Scene) AddConnector(c Connector) error {
	if _, ok := s.nodes[c.From]; !ok {
		return fmt.Errorf("connector %s->%s: from %q: %w", c.From, c.To, c.From, ErrUnknownEndpoint)
	}
	if _, ok := s.nodes[c.To]; !ok {
		return fmt.Errorf("connector %s->%s: to %q: %w", c.From, c.To, c.To, ErrUnknownEndpoint)
	}
	if c.Route == "" {
		c.Route = RouteStraight
	}
	s.connectors = append(s.connectors, c)
	return nil
}

// AddLabel adds a free-standing label.
func (s *Scene) AddLabel(l Label) {
	s.labels = append(s.labels, l)
}

// Node returns the node with the given ID, or false if absent.
func (s *Scene) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID. The slice is freshly allocated but
// the pointers alias the scene's nodes.
func (s *Scene) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(s.nodes))
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}

// Connectors returns the connectors in insertion order.
func (s *Scene) Connectors() []Connector {
	return slices.Clone(s.connectors)
}

// Labels returns the free-standing labels in insertion order.
func (s *Scene) Labels() []Label {
	return slices.Clone(s.labels)
}

// NodeCount returns the number of nodes.
func (s *Scene) NodeCount() int { return len(s.nodes) }

// ConnectorCount returns the number of connectors.
func (s *Scene) ConnectorCount() int { return len(s.connectors) }

// Validate checks referential integrity: every connector endpoint must name
// an existing node. Layout refuses scenes that fail validation.
func (s *Scene) Validate() error {
	for _, c := range s.connectors {
		if _, ok := s.nodes[c.From]; !ok {
			return fmt.Errorf("connector %s->%s: %w", c.From, c.To, ErrUnknownEndpoint)
		}
		if _, ok := s.nodes[c.To]; !ok {
			return fmt.Errorf("connector %s->%s: %w", c.From, c.To, ErrUnknownEndpoint)
		}
	}
	return nil
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := New(s.Meta)
	for id, n := range s.nodes {
		cp := *n
		cp.Attrs = maps.Clone(n.Attrs)
		out.nodes[id] = &cp
	}
	out.connectors = slices.Clone(s.connectors)
	out.labels = slices.Clone(s.labels)
	return out
}

// Keys returns the attribute keys sorted for deterministic rendering
// order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// AttrKeys returns the node's attribute keys sorted for deterministic
// rendering order.
func (n *Node) AttrKeys() []string {
	return n.Attrs.Keys()
}
