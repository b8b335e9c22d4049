package source

import (
	"database/sql"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"sheetpress/pkg/errors"
	"sheetpress/pkg/scene"
)

// ReadSQLite loads a scene from a relational store with the schema
//
//	meta(key TEXT PRIMARY KEY, value TEXT)            -- title, format, scale
//	nodes(id TEXT PRIMARY KEY, kind TEXT, w REAL, h REAL,
//	      x REAL, y REAL, placed INTEGER)
//	node_attrs(node_id TEXT, key TEXT, value TEXT)
//	connectors(from_id TEXT, to_id TEXT, directed INTEGER,
//	           label TEXT, route TEXT, seq INTEGER)
//	labels(text TEXT, x REAL, y REAL, seq INTEGER)
//
// Rows are read in deterministic order (nodes by id, connectors and
// labels by seq) so repeated imports build identical scenes.
func ReadSQLite(path string) (*scene.Scene, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene database %s", path)
	}
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open scene database %s", path)
	}
	defer db.Close()

	meta, err := readMeta(db)
	if err != nil {
		return nil, err
	}
	s := scene.New(meta)

	if err := readNodes(db, s); err != nil {
		return nil, err
	}
	if err := readConnectors(db, s); err != nil {
		return nil, err
	}
	if err := readLabels(db, s); err != nil {
		return nil, err
	}
	return s, nil
}

func readMeta(db *sql.DB) (scene.Meta, error) {
	var meta scene.Meta
	rows, err := db.Query(`SELECT key, value FROM meta ORDER BY key`)
	if err != nil {
		// The meta table is optional.
		return meta, nil
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return meta, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan meta row")
		}
		switch key {
		case "title":
			meta.Title = value
		case "format":
			meta.FormatHint = value
		case "scale":
			n, err := parseDecimal(value)
			if err != nil {
				return meta, errors.Wrap(errors.ErrCodeInvalidScale, err, "meta scale %q", value)
			}
			meta.ScaleHint = int(n)
		}
	}
	return meta, rows.Err()
}

func readNodes(db *sql.DB, s *scene.Scene) error {
	rows, err := db.Query(`SELECT id, kind, w, h, x, y, placed FROM nodes ORDER BY id`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "query nodes")
	}
	defer rows.Close()

	for rows.Next() {
		var n scene.Node
		var kind sql.NullString
		var x, y sql.NullFloat64
		var placed sql.NullBool
		if err := rows.Scan(&n.ID, &kind, &n.W, &n.H, &x, &y, &placed); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scan node row")
		}
		n.Kind = kind.String
		if placed.Valid && placed.Bool && x.Valid && y.Valid {
			n.X, n.Y = x.Float64, y.Float64
			n.Placed = true
		}
		attrs, err := readAttrs(db, n.ID)
		if err != nil {
			return err
		}
		n.Attrs = attrs
		if err := s.AddNode(n); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scene node")
		}
	}
	return rows.Err()
}

func readAttrs(db *sql.DB, nodeID string) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM node_attrs WHERE node_id = ? ORDER BY key`, nodeID)
	if err != nil {
		// The attrs table is optional.
		return nil, nil
	}
	defer rows.Close()

	var attrs map[string]string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan attr row for node %s", nodeID)
		}
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrs[key] = value
	}
	return attrs, rows.Err()
}

func readConnectors(db *sql.DB, s *scene.Scene) error {
	rows, err := db.Query(`SELECT from_id, to_id, directed, label, route FROM connectors ORDER BY seq`)
	if err != nil {
		// A scene of bare points has no connectors table.
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var c scene.Connector
		var directed sql.NullBool
		var label, route sql.NullString
		if err := rows.Scan(&c.From, &c.To, &directed, &label, &route); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scan connector row")
		}
		c.Directed = directed.Valid && directed.Bool
		c.Label = label.String
		c.Route, err = parseRoute(route.String)
		if err != nil {
			return err
		}
		if err := s.AddConnector(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidReference, err, "scene connector")
		}
	}
	return rows.Err()
}

func readLabels(db *sql.DB, s *scene.Scene) error {
	rows, err := db.Query(`SELECT text, x, y FROM labels ORDER BY seq`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var l scene.Label
		if err := rows.Scan(&l.Text, &l.X, &l.Y); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scan label row")
		}
		s.AddLabel(l)
	}
	return rows.Err()
}
