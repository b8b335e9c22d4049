package source

import (
	"encoding/xml"
	"fmt"

	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
)

// pointsDoc is the XML point-list schema:
//
//	<points title="...">
//	  <pt id="P1" x="12.5" y="30.0"/>
//	</points>
type pointsDoc struct {
	XMLName xml.Name `xml:"points"`
	Title   string   `xml:"title,attr"`
	Points  []struct {
		ID string  `xml:"id,attr"`
		X  float64 `xml:"x,attr"`
		Y  float64 `xml:"y,attr"`
	} `xml:"pt"`
}

// ReadXML parses an XML point list into a scene of survey points.
func ReadXML(data []byte) (*scene.Scene, error) {
	var doc pointsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode point XML")
	}
	s := scene.New(scene.Meta{Title: doc.Title})
	for i, p := range doc.Points {
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("P%d", i+1)
		}
		node := scene.Node{
			ID:     id,
			Kind:   pointKind,
			W:      pointNodeSize,
			H:      pointNodeSize,
			X:      p.X,
			Y:      p.Y,
			Placed: true,
		}
		if err := s.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "point %d", i+1)
		}
	}
	return s, nil
}
