package optimize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minifold/minifold/pkg/minify"
	"github.com/minifold/minifold/pkg/sourcemap"
)

// failureMarker identifies the optimizer as the origin of a per-asset
// failure in diagnostics.
const failureMarker = "from Minifold"

// translateError turns a minification failure into the diagnostic reported
// for the asset. Coordinates in the failure refer to the minified output;
// when the asset carries a usable input source map they are resolved back
// to original-source coordinates and both locations are reported.
//
// Translation never fails: an unresolvable lookup degrades to the
// minified-coordinates form, a failure without coordinates falls back to
// its stack or bare message.
func translateError(name string, rawInputMap []byte, err error) error {
	head := fmt.Sprintf("%s %s\n", name, failureMarker)

	var mErr *minify.Error
	if !errors.As(err, &mErr) {
		return fmt.Errorf("%s%s", head, err.Error())
	}

	if mErr.Line > 0 {
		if pos, ok := resolveOriginal(rawInputMap, mErr.Line, mErr.Col); ok {
			return fmt.Errorf("%s%s [%s:%d,%d][%s:%d,%d]",
				head, mErr.Message,
				shortenSource(pos.Source), pos.Line, pos.Column,
				name, mErr.Line, mErr.Col)
		}
		return fmt.Errorf("%s%s [%s:%d,%d]", head, mErr.Message, name, mErr.Line, mErr.Col)
	}

	if mErr.Stack != "" {
		return fmt.Errorf("%s%s", head, mErr.Stack)
	}
	return fmt.Errorf("%s%s", head, mErr.Message)
}

func resolveOriginal(rawMap []byte, line, col int) (sourcemap.Position, bool) {
	if rawMap == nil {
		return sourcemap.Position{}, false
	}
	resolver, err := sourcemap.NewResolver(rawMap)
	if err != nil {
		return sourcemap.Position{}, false
	}
	return resolver.Resolve(line, col)
}

// shortenSource strips bundler-style prefixes from an original source path
// so diagnostics stay readable.
func shortenSource(source string) string {
	if i := strings.LastIndex(source, "!"); i >= 0 {
		source = source[i+1:]
	}
	source = strings.TrimPrefix(source, "webpack://")
	return strings.TrimPrefix(source, "./")
}
