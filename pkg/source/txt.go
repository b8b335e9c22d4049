package source

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
)

// pointNodeSize is the nominal box size for survey points imported from
// bare coordinate lists, which carry no extent of their own.
const pointNodeSize = 2.0

// pointKind tags imported survey points for styling and the legend.
const pointKind = "point"

// ReadTXT parses a semicolon-separated point list, one point per line:
//
//	x;y
//	id;x;y
//
// Blank lines and lines starting with '#' are skipped. Decimal commas are
// accepted alongside decimal points, matching common geodetic exports.
// Unnamed points are numbered in file order starting at 1.
func ReadTXT(data []byte) (*scene.Scene, error) {
	s := scene.New(scene.Meta{})
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	auto := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ";")
		var id string
		var xs, ys string
		switch len(parts) {
		case 2:
			auto++
			id = fmt.Sprintf("P%d", auto)
			xs, ys = parts[0], parts[1]
		case 3:
			id = strings.TrimSpace(parts[0])
			xs, ys = parts[1], parts[2]
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"line %d: want \"x;y\" or \"id;x;y\", got %d fields", lineNo, len(parts))
		}
		x, err := parseDecimal(xs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: x coordinate", lineNo)
		}
		y, err := parseDecimal(ys)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: y coordinate", lineNo)
		}
		node := scene.Node{
			ID:     id,
			Kind:   pointKind,
			W:      pointNodeSize,
			H:      pointNodeSize,
			X:      x,
			Y:      y,
			Placed: true,
		}
		if err := s.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan point list")
	}
	return s, nil
}

// parseDecimal accepts both "12.5" and "12,5".
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
