package scene

import "encoding/json"

// Wire representation for serialized scenes. Declared positions are
// encoded as pointers so placed-ness survives the round trip.
type sceneJSON struct {
	Meta       metaJSON        `json:"meta"`
	Nodes      []nodeJSON      `json:"nodes"`
	Connectors []connectorJSON `json:"connectors,omitempty"`
	Labels     []labelJSON     `json:"labels,omitempty"`
}

type labelJSON struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type metaJSON struct {
	Title      string `json:"title,omitempty"`
	FormatHint string `json:"format,omitempty"`
	ScaleHint  int    `json:"scale,omitempty"`
}

type nodeJSON struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind,omitempty"`
	W     float64  `json:"w"`
	H     float64  `json:"h"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

type connectorJSON struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Directed bool   `json:"directed,omitempty"`
	Label    string `json:"label,omitempty"`
	Route    Route  `json:"route,omitempty"`
}

// MarshalJSON encodes the scene canonically: nodes sorted by ID,
// connectors and labels in insertion order. Identical scenes always
// produce identical bytes, which the cache layer relies on.
func (s *Scene) MarshalJSON() ([]byte, error) {
	doc := sceneJSON{
		Meta: metaJSON{
			Title:      s.Meta.Title,
			FormatHint: s.Meta.FormatHint,
			ScaleHint:  s.Meta.ScaleHint,
		},
		Nodes:      make([]nodeJSON, 0, len(s.nodes)),
		Connectors: make([]connectorJSON, 0, len(s.connectors)),
	}
	for _, l := range s.labels {
		doc.Labels = append(doc.Labels, labelJSON{Text: l.Text, X: l.X, Y: l.Y})
	}
	for _, n := range s.Nodes() {
		jn := nodeJSON{ID: n.ID, Kind: n.Kind, W: n.W, H: n.H}
		if n.Placed {
			x, y := n.X, n.Y
			jn.X, jn.Y = &x, &y
		}
		if len(n.Attrs) > 0 {
			jn.Attrs = n.Attrs
		}
		doc.Nodes = append(doc.Nodes, jn)
	}
	for _, c := range s.connectors {
		doc.Connectors = append(doc.Connectors, connectorJSON{
			From: c.From, To: c.To, Directed: c.Directed, Label: c.Label, Route: c.Route,
		})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a scene previously encoded with MarshalJSON. The
// receiver is reset; constraint violations in the payload surface as the
// same sentinel errors AddNode and AddConnector return.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var doc sceneJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = *New(Meta{
		Title:      doc.Meta.Title,
		FormatHint: doc.Meta.FormatHint,
		ScaleHint:  doc.Meta.ScaleHint,
	})
	for _, jn := range doc.Nodes {
		n := Node{ID: jn.ID, Kind: jn.Kind, W: jn.W, H: jn.H, Attrs: jn.Attrs}
		if jn.X != nil && jn.Y != nil {
			n.X, n.Y, n.Placed = *jn.X, *jn.Y, true
		}
		if err := s.AddNode(n); err != nil {
			return err
		}
	}
	for _, jc := range doc.Connectors {
		c := Connector{From: jc.From, To: jc.To, Directed: jc.Directed, Label: jc.Label, Route: jc.Route}
		if err := s.AddConnector(c); err != nil {
			return err
		}
	}
	for _, l := range doc.Labels {
		s.AddLabel(Label{Text: l.Text, X: l.X, Y: l.Y})
	}
	return nil
}
