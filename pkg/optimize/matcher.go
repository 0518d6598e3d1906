package optimize

import (
	"fmt"
	"regexp"

	"github.com/minifold/minifold/pkg/asset"
)

// defaultTestPattern matches conventional script asset names, query string
// included.
const defaultTestPattern = `(?i)\.[cm]?js(\?.*)?$`

// NewMatcher compiles a MatchConfig into an asset matcher. Pattern
// compilation errors are configuration errors and abort the run before any
// task starts.
func NewMatcher(cfg MatchConfig) (asset.Matcher, error) {
	test, err := compilePatterns(cfg.Test, "test")
	if err != nil {
		return nil, err
	}
	if len(test) == 0 {
		test = []*regexp.Regexp{regexp.MustCompile(defaultTestPattern)}
	}

	include, err := compilePatterns(cfg.Include, "include")
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(cfg.Exclude, "exclude")
	if err != nil {
		return nil, err
	}

	return func(name string) bool {
		if !anyMatch(test, name) {
			return false
		}
		if len(include) > 0 && !anyMatch(include, name) {
			return false
		}
		return !anyMatch(exclude, name)
	}, nil
}

func compilePatterns(sources []string, kind string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, src, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

func anyMatch(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
