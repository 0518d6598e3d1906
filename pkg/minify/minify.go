// Package minify defines the contract between the optimizer core and the
// minification primitive.
//
// The optimizer treats minification as an opaque transform: bytes in, bytes
// out, plus an optional source map and the comments extracted for license
// preservation. Implementations live in subpackages (jsmin) or are supplied
// by the embedding build tool.
package minify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Task is one unit of minification work. Immutable once constructed; the
// optimizer builds exactly one per eligible asset per run.
type Task struct {
	// Name is the asset name, used for diagnostics only.
	Name string

	// Input is the asset content to minify.
	Input []byte

	// InputSourceMap is the raw JSON of the asset's incoming source map,
	// or nil. Passed through so backends can chain maps.
	InputSourceMap []byte

	// Options is the effective minification configuration for this run.
	Options Options
}

// Result is the output of one minification.
type Result struct {
	// Code is the minified content.
	Code []byte

	// Map is the raw JSON of the output source map, or nil when the
	// backend does not produce one.
	Map []byte

	// ExtractedComments holds the comments pulled out of the input for
	// license preservation, each including its delimiters, in source order.
	ExtractedComments []string
}

// Minifier executes the minification primitive.
type Minifier interface {
	Minify(ctx context.Context, task *Task) (*Result, error)
}

// Func adapts a plain function to the Minifier interface.
type Func func(ctx context.Context, task *Task) (*Result, error)

// Minify implements Minifier.
func (f Func) Minify(ctx context.Context, task *Task) (*Result, error) {
	return f(ctx, task)
}

// Error is a minification failure. Line and Col, when set, refer to the
// minified output, not the original source; the optimizer's error
// translator maps them back through the input source map.
type Error struct {
	Message string

	// Line is 1-based; 0 means unknown.
	Line int

	// Col is 0-based and only meaningful when Line is set.
	Col int

	// Stack optionally carries a backend stack trace.
	Stack string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s [%d:%d]", e.Message, e.Line, e.Col)
	}
	return e.Message
}

// ============================================================================
// Comment Extraction Modes
// ============================================================================

// ExtractMode selects which comments are preserved into the license file.
type ExtractMode string

const (
	// ExtractNone disables comment extraction.
	ExtractNone ExtractMode = "none"

	// ExtractSome preserves comments matching the conventional license
	// markers: a leading "!", @preserve, @license, or @cc_on.
	ExtractSome ExtractMode = "some"

	// ExtractAll preserves every comment.
	ExtractAll ExtractMode = "all"

	// ExtractPattern preserves comments matching a caller-supplied regexp.
	ExtractPattern ExtractMode = "pattern"
)

// ExtractConfig is the normalized form of the extract-comments condition.
type ExtractConfig struct {
	Mode ExtractMode

	// Pattern is the regexp source used when Mode is ExtractPattern.
	Pattern string
}

// ============================================================================
// Options
// ============================================================================

// Options is the effective, immutable minification configuration shared by
// every task in a run. It is derived once at setup (see DefaultECMA) and
// passed by value; nothing mutates it afterwards.
type Options struct {
	// ECMA is the output language target: 5, 2015 or 2020.
	ECMA int

	// Module indicates ES module output.
	Module bool

	// Extract controls license comment extraction.
	Extract ExtractConfig

	// Raw is the opaque backend pass-through. Interpreted by the backend
	// only; participates in the cache fingerprint.
	Raw map[string]any
}

// Fingerprint returns a canonical byte representation of the options for
// cache keying. JSON object keys are emitted sorted, so the output is
// deterministic for equal options.
func (o Options) Fingerprint() []byte {
	// json.Marshal sorts map keys, which covers Raw.
	b, err := json.Marshal(struct {
		ECMA    int            `json:"ecma"`
		Module  bool           `json:"module"`
		Mode    ExtractMode    `json:"extract"`
		Pattern string         `json:"pattern,omitempty"`
		Raw     map[string]any `json:"raw,omitempty"`
	}{o.ECMA, o.Module, o.Extract.Mode, o.Extract.Pattern, o.Raw})
	if err != nil {
		// Options are plain data; Marshal cannot fail on them.
		panic(fmt.Sprintf("minify: options fingerprint: %v", err))
	}
	return b
}

// ============================================================================
// ECMA Target Derivation
// ============================================================================

// Capabilities describes what the build environment declares as supported
// output syntax. The zero value means "assume nothing", which yields ES5.
type Capabilities struct {
	ArrowFunction bool
	Const         bool
	Destructuring bool
	ForOf         bool
	Module        bool
	BigIntLiteral bool
	DynamicImport bool
}

// DefaultECMA derives the output ECMA target from declared capabilities.
// Checks only ever raise the version: ES5 baseline, 2015 when any ES2015
// construct is supported, 2020 when BigInt literals or dynamic import are.
func DefaultECMA(caps Capabilities) int {
	ecma := 5
	if caps.ArrowFunction || caps.Const || caps.Destructuring || caps.ForOf || caps.Module {
		ecma = 2015
	}
	if caps.BigIntLiteral || caps.DynamicImport {
		ecma = 2020
	}
	return ecma
}

// SortedComments returns the extracted comments sorted and deduplicated, the
// order used when writing a license file.
func SortedComments(comments []string) []string {
	out := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
