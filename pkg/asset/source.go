package asset

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Source is immutable asset content, optionally carrying a source map.
type Source interface {
	// Content returns the asset bytes. Callers must not mutate the
	// returned slice.
	Content() []byte

	// SourceMap returns the raw JSON of the asset's source map, or nil.
	SourceMap() []byte
}

// ============================================================================
// Raw Source
// ============================================================================

// RawSource is plain content without a source map.
type RawSource struct {
	content []byte
}

// NewRaw wraps content bytes as a Source.
func NewRaw(content []byte) *RawSource {
	return &RawSource{content: content}
}

// NewRawString wraps a string as a Source.
func NewRawString(content string) *RawSource {
	return &RawSource{content: []byte(content)}
}

// Content implements Source.
func (s *RawSource) Content() []byte { return s.content }

// SourceMap implements Source.
func (s *RawSource) SourceMap() []byte { return nil }

// ============================================================================
// Map-Carrying Source
// ============================================================================

// MappedSource is content together with its source map.
type MappedSource struct {
	content []byte
	rawMap  []byte
}

// NewMapped builds a map-carrying source from minified code and its map.
func NewMapped(content, rawMap []byte) *MappedSource {
	return &MappedSource{content: content, rawMap: rawMap}
}

// Content implements Source.
func (s *MappedSource) Content() []byte { return s.content }

// SourceMap implements Source.
func (s *MappedSource) SourceMap() []byte { return s.rawMap }

// ============================================================================
// Concatenated Source
// ============================================================================

// ConcatSource is the non-destructive composition of several sources, used
// for banner and shebang prepends. The original parts are never mutated.
type ConcatSource struct {
	parts []Source
}

// NewConcat composes sources in order.
func NewConcat(parts ...Source) *ConcatSource {
	return &ConcatSource{parts: parts}
}

// Content implements Source.
func (s *ConcatSource) Content() []byte {
	var buf bytes.Buffer
	for _, p := range s.parts {
		buf.Write(p.Content())
	}
	return buf.Bytes()
}

// SourceMap returns the map of the first map-carrying part, shifted down by
// the number of lines preceding it. Whole-line prepends (shebang, banner)
// translate to empty generated lines, which a mappings string encodes as
// leading semicolons.
func (s *ConcatSource) SourceMap() []byte {
	lines := 0
	for _, p := range s.parts {
		if m := p.SourceMap(); m != nil {
			if lines == 0 {
				return m
			}
			return offsetMappings(m, lines)
		}
		lines += bytes.Count(p.Content(), []byte("\n"))
	}
	return nil
}

// offsetMappings prepends n empty generated lines to a source map. A map
// that cannot be decoded is returned unchanged; map quality degrades, the
// asset content stays authoritative.
func offsetMappings(raw []byte, n int) []byte {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	mappings, ok := m["mappings"].(string)
	if !ok {
		return raw
	}
	m["mappings"] = strings.Repeat(";", n) + mappings
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}
