// Package jsmin is the built-in JavaScript minifier backend, built on
// github.com/tdewolff/minify.
//
// It implements the optimizer's minify.Minifier contract: license comments
// are extracted from the input before minification (tdewolff strips all
// comments), a leading shebang survives at the start of the output, and no
// output source map is produced, which the contract allows.
package jsmin

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	tdewolff "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"

	"github.com/minifold/minifold/pkg/bufpool"
	"github.com/minifold/minifold/pkg/minify"
)

// someCondition matches the conventional license markers, applied to the
// comment body (delimiters stripped): a leading "!" after any number of
// "*", or the @preserve/@license/@cc_on annotations anywhere.
var someCondition = regexp.MustCompile(`(?i)^\**!|@preserve|@license|@cc_on`)

// Minifier minifies JavaScript assets.
type Minifier struct {
	m *tdewolff.M
}

// New creates a JavaScript minifier. Backend tuning is read from the opaque
// options pass-through at Minify time; the recognized keys are
// "keepVarNames" (bool) and "precision" (number of significant digits).
func New() *Minifier {
	return &Minifier{m: tdewolff.New()}
}

// Minify implements minify.Minifier.
func (mn *Minifier) Minify(ctx context.Context, task *minify.Task) (*minify.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := task.Input

	// A shebang is not JavaScript; split it off and restore it verbatim
	// in front of the minified body.
	var shebang []byte
	if bytes.HasPrefix(input, []byte("#!")) {
		if idx := bytes.IndexByte(input, '\n'); idx >= 0 {
			shebang = input[:idx+1]
			input = input[idx+1:]
		} else {
			shebang = append(append([]byte{}, input...), '\n')
			input = nil
		}
	}

	comments, err := extractComments(input, task.Options.Extract)
	if err != nil {
		return nil, &minify.Error{Message: err.Error()}
	}

	backend := &js.Minifier{}
	if v, ok := task.Options.Raw["keepVarNames"].(bool); ok {
		backend.KeepVarNames = v
	}
	switch v := task.Options.Raw["precision"].(type) {
	case int:
		backend.Precision = v
	case float64:
		backend.Precision = int(v)
	}

	// Output goes through the tiered pool; under a wide worker pool the
	// per-task buffers are the dominant allocation.
	backing := bufpool.Get(len(input))
	defer bufpool.Put(backing)
	out := bytes.NewBuffer(backing[:0])

	if err := backend.Minify(mn.m, out, bytes.NewReader(input), nil); err != nil {
		return nil, &minify.Error{
			Message: fmt.Sprintf("minify %s: %v", task.Name, err),
		}
	}

	// Copy out of the pooled buffer before it is recycled.
	code := make([]byte, 0, len(shebang)+out.Len())
	code = append(code, shebang...)
	code = append(code, out.Bytes()...)

	return &minify.Result{
		Code:              code,
		ExtractedComments: comments,
	}, nil
}

// ============================================================================
// Comment Extraction
// ============================================================================

// extractComments scans the input for comments satisfying the configured
// condition and returns them with their delimiters, in source order.
//
// The scanner tracks string and template literals so comment markers inside
// them are ignored. Regex literals are not tracked; a comment marker inside
// a regex literal is a known, harmless false positive for license scanning.
func extractComments(src []byte, cfg minify.ExtractConfig) ([]string, error) {
	if cfg.Mode == minify.ExtractNone || cfg.Mode == "" {
		return nil, nil
	}

	var pattern *regexp.Regexp
	switch cfg.Mode {
	case minify.ExtractSome:
		pattern = someCondition
	case minify.ExtractAll:
		pattern = nil // keep everything
	case minify.ExtractPattern:
		p, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("extract comments pattern: %w", err)
		}
		pattern = p
	default:
		return nil, fmt.Errorf("unknown extract mode %q", cfg.Mode)
	}

	var comments []string
	i := 0
	n := len(src)

	for i < n {
		c := src[i]

		switch c {
		case '"', '\'', '`':
			i = skipString(src, i)

		case '/':
			if i+1 >= n {
				i++
				continue
			}
			switch src[i+1] {
			case '/':
				end := bytes.IndexByte(src[i:], '\n')
				var text []byte
				if end < 0 {
					text = src[i:]
					i = n
				} else {
					text = src[i : i+end]
					i += end + 1
				}
				if keepComment(text[2:], pattern) {
					comments = append(comments, string(text))
				}
			case '*':
				end := bytes.Index(src[i+2:], []byte("*/"))
				var text []byte
				if end < 0 {
					text = src[i:]
					i = n
				} else {
					text = src[i : i+2+end+2]
					i += 2 + end + 2
				}
				body := bytes.TrimPrefix(text, []byte("/*"))
				body = bytes.TrimSuffix(body, []byte("*/"))
				if keepComment(body, pattern) {
					comments = append(comments, string(text))
				}
			default:
				i++
			}

		default:
			i++
		}
	}

	return comments, nil
}

// keepComment reports whether a comment body satisfies the condition.
// A nil pattern means "keep all".
func keepComment(body []byte, pattern *regexp.Regexp) bool {
	if pattern == nil {
		return true
	}
	return pattern.Match(body)
}

// skipString advances past a string or template literal starting at i,
// honoring backslash escapes. Returns the index just past the closing
// quote, or len(src) for an unterminated literal.
func skipString(src []byte, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		case '\n':
			// Plain strings do not span lines; bail out so a stray
			// quote cannot swallow the rest of the file.
			if quote != '`' {
				return i + 1
			}
			i++
		default:
			i++
		}
	}
	return i
}
