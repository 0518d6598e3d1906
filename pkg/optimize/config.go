// Package optimize implements the orchestration core: per-asset task
// scheduling over a bounded worker pool, content-addressed result caching,
// result finalization (shebang, banner, source map), deterministic merging
// of extracted license comments, and source-map-aware error translation.
package optimize

import (
	"encoding/json"
	"fmt"

	"github.com/minifold/minifold/pkg/minify"
	"github.com/minifold/minifold/pkg/pool"
)

// DefaultFilenameTemplate is the destination template for extracted
// comments: "[file]" is the asset path without its query, "[query]" the
// query including its "?".
const DefaultFilenameTemplate = "[file].LICENSE.txt[query]"

// BannerConfig controls the license banner prepended to assets whose
// comments were extracted. Exactly one of Text and Func is consulted when
// set; with neither set the default banner pointing at the comments file
// is used.
type BannerConfig struct {
	// Disabled suppresses the banner entirely.
	Disabled bool

	// Text is a fixed banner body.
	Text string

	// Func derives the banner body from the comments filename.
	Func func(commentsFilename string) string
}

// CommentsConfig is the normalized extract-comments configuration.
type CommentsConfig struct {
	// Extract selects which comments are preserved.
	Extract minify.ExtractConfig

	// FilenameTemplate is the destination template for the extracted
	// comments file. Empty means DefaultFilenameTemplate.
	FilenameTemplate string

	// Banner controls banner injection.
	Banner BannerConfig
}

// MatchConfig selects which assets are eligible. All fields hold regexp
// sources applied to the asset name. An asset is eligible when it matches
// any Test pattern (or Test is empty, which falls back to the default
// script pattern), matches any Include pattern (or Include is empty), and
// matches no Exclude pattern.
type MatchConfig struct {
	Test    []string
	Include []string
	Exclude []string
}

// Config is the effective run configuration. It is derived once at setup
// and treated as immutable afterwards; tasks receive it by value.
type Config struct {
	// Match selects eligible assets.
	Match MatchConfig

	// Comments controls comment extraction and banner injection.
	Comments CommentsConfig

	// Options is the effective minification configuration, including the
	// opaque backend pass-through. Participates in the cache fingerprint.
	Options minify.Options

	// Parallel is the worker pool parallelism setting.
	Parallel pool.Parallelism

	// CacheKeys carries caller-supplied data merged into the cache
	// fingerprint. It never changes behavior, only cache identity.
	CacheKeys map[string]string
}

// normalize fills defaults and pushes the extract condition down into the
// minifier options so a single Options value describes the transform.
func (c Config) normalize() Config {
	if c.Comments.FilenameTemplate == "" {
		c.Comments.FilenameTemplate = DefaultFilenameTemplate
	}
	if c.Comments.Extract.Mode == "" {
		c.Comments.Extract.Mode = minify.ExtractNone
	}
	c.Options.Extract = c.Comments.Extract
	return c
}

// fingerprintExtra returns the caller-supplied cache key data in canonical
// form.
func (c Config) fingerprintExtra() []byte {
	if len(c.CacheKeys) == 0 {
		return nil
	}
	b, err := json.Marshal(c.CacheKeys)
	if err != nil {
		// A map of strings always marshals.
		panic(fmt.Sprintf("optimize: cache keys fingerprint: %v", err))
	}
	return b
}
