package source

import (
	"encoding/json"

	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
)

// sceneDoc is the native JSON contract. Node coordinates are optional;
// a node with both x and y present is treated as declared, anything else
// is auto-placed by the layout grid.
type sceneDoc struct {
	Meta struct {
		Title  string `json:"title"`
		Format string `json:"format"`
		Scale  int    `json:"scale"`
	} `json:"meta"`
	Nodes []struct {
		ID    string            `json:"id"`
		Kind  string            `json:"kind"`
		W     float64           `json:"w"`
		H     float64           `json:"h"`
		X     *float64          `json:"x"`
		Y     *float64          `json:"y"`
		Attrs map[string]string `json:"attrs"`
	} `json:"nodes"`
	Connectors []struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Directed bool   `json:"directed"`
		Label    string `json:"label"`
		Route    string `json:"route"`
	} `json:"connectors"`
	Labels []struct {
		Text string  `json:"text"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	} `json:"labels"`
}

// ReadJSON decodes the native scene document.
func ReadJSON(data []byte) (*scene.Scene, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scene JSON")
	}

	s := scene.New(scene.Meta{
		Title:      doc.Meta.Title,
		FormatHint: doc.Meta.Format,
		ScaleHint:  doc.Meta.Scale,
	})
	for _, n := range doc.Nodes {
		node := scene.Node{
			ID:    n.ID,
			Kind:  n.Kind,
			W:     n.W,
			H:     n.H,
			Attrs: n.Attrs,
		}
		if n.X != nil && n.Y != nil {
			node.X, node.Y = *n.X, *n.Y
			node.Placed = true
		}
		if err := s.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scene node")
		}
	}
	for _, c := range doc.Connectors {
		route, err := parseRoute(c.Route)
		if err != nil {
			return nil, err
		}
		conn := scene.Connector{
			From:     c.From,
			To:       c.To,
			Directed: c.Directed,
			Label:    c.Label,
			Route:    route,
		}
		if err := s.AddConnector(conn); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidReference, err, "scene connector")
		}
	}
	for _, l := range doc.Labels {
		s.AddLabel(scene.Label{Text: l.Text, X: l.X, Y: l.Y})
	}
	return s, nil
}

func parseRoute(raw string) (scene.Route, error) {
	switch raw {
	case "", string(scene.RouteStraight):
		return scene.RouteStraight, nil
	case string(scene.RouteOrthogonal):
		return scene.RouteOrthogonal, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown connector route %q", raw)
	}
}
