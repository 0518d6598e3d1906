// Package sourcemap validates source maps and resolves generated positions
// back to original source coordinates.
//
// Parsing and VLQ decoding are delegated to github.com/go-sourcemap/sourcemap;
// this package adds the shape check the optimizer needs (a malformed map is a
// warning, not a failure) and a small resolution façade.
package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Position is a resolved location in an original source file.
type Position struct {
	// Source is the original source path as recorded in the map.
	Source string

	// Line is the 1-based original line.
	Line int

	// Column is the 0-based original column.
	Column int
}

// shape mirrors the fields checked for well-formedness. Maps failing the
// check are still used best-effort; see Check.
type shape struct {
	Version  int             `json:"version"`
	Sources  json.RawMessage `json:"sources"`
	Mappings json.RawMessage `json:"mappings"`
}

var (
	// ErrNotObject is returned when the map is not a JSON object at all.
	ErrNotObject = errors.New("source map is not a JSON object")
)

// Check verifies the basic shape of a source map: a version field, a
// sources array, and a string mappings field. A failing check means the map
// is suspect but callers should still attempt to use it; resolution
// degrades gracefully on garbage input.
func Check(raw []byte) error {
	var s shape
	if err := json.Unmarshal(raw, &s); err != nil {
		return ErrNotObject
	}
	if s.Version == 0 {
		return errors.New("source map has no version field")
	}
	var sources []json.RawMessage
	if s.Sources == nil || json.Unmarshal(s.Sources, &sources) != nil {
		return errors.New("source map sources is not an array")
	}
	var mappings string
	if s.Mappings == nil || json.Unmarshal(s.Mappings, &mappings) != nil {
		return errors.New("source map mappings is not a string")
	}
	return nil
}

// Resolver answers reverse lookups against one parsed source map.
type Resolver struct {
	consumer consumer
}

// consumer is the subset of the sourcemap library we rely on, split out so
// tests can exercise resolution failures.
type consumer interface {
	Source(genLine, genCol int) (source, name string, line, col int, ok bool)
}

// NewResolver parses a raw source map. The returned error is non-nil only
// when the map cannot be parsed at all; shape problems reported by Check do
// not necessarily prevent parsing.
func NewResolver(raw []byte) (*Resolver, error) {
	c, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse source map: %w", err)
	}
	return &Resolver{consumer: c}, nil
}

// Resolve maps a (line, column) position in the generated output back to the
// original source. Line is 1-based, column is 0-based, matching minifier
// error coordinates. The second return is false when the position has no
// mapping.
func (r *Resolver) Resolve(line, col int) (Position, bool) {
	if r == nil || line <= 0 {
		return Position{}, false
	}
	source, _, origLine, origCol, ok := r.consumer.Source(line, col)
	if !ok || source == "" {
		return Position{}, false
	}
	return Position{Source: source, Line: origLine, Column: origCol}, true
}
