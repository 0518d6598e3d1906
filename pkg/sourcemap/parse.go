package sourcemap

import (
	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// parse wraps the library constructor so the rest of the package depends on
// the narrow consumer interface only.
func parse(raw []byte) (consumer, error) {
	c, err := gosourcemap.Parse("", raw)
	if err != nil {
		return nil, err
	}
	return c, nil
}
