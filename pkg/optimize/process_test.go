package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minifold/minifold/pkg/minify"
)

func newProcessor(t *testing.T, comments CommentsConfig) *Optimizer {
	t.Helper()
	o, err := New(Config{Comments: comments}, squeeze(nil))
	require.NoError(t, err)
	return o
}

// ============================================================================
// Result Finalization Tests
// ============================================================================

func TestProcessShebangRoundTrip(t *testing.T) {
	o := newProcessor(t, CommentsConfig{})

	out := o.process("app.js", &minify.Result{
		Code:              []byte("#!/usr/bin/env node\nvar x=1;"),
		ExtractedComments: []string{"/*! MIT */"},
	})

	content := string(out.source.Content())
	assert.True(t, strings.HasPrefix(content, "#!/usr/bin/env node\n"), "shebang stays first")
	assert.Equal(t,
		"#!/usr/bin/env node\n/*! For license information please see app.js.LICENSE.txt */\nvar x=1;",
		content)
	assert.Less(t,
		strings.Index(content, "#!"), strings.Index(content, "/*!"),
		"shebang must never appear after the banner")
}

func TestProcessShebangKeptInlineWithoutComments(t *testing.T) {
	o := newProcessor(t, CommentsConfig{})

	out := o.process("app.js", &minify.Result{Code: []byte("#!/usr/bin/env node\nvar x=1;")})
	assert.Equal(t, "#!/usr/bin/env node\nvar x=1;", string(out.source.Content()))
	assert.Empty(t, out.commentsFilename)
}

func TestProcessBannerVariants(t *testing.T) {
	res := func() *minify.Result {
		return &minify.Result{
			Code:              []byte("var x=1;"),
			ExtractedComments: []string{"/*! MIT */"},
		}
	}

	t.Run("DefaultRelativePath", func(t *testing.T) {
		o := newProcessor(t, CommentsConfig{})
		out := o.process("dist/app.js", res())

		assert.Equal(t, "dist/app.js.LICENSE.txt", out.commentsFilename)
		assert.Equal(t,
			"/*! For license information please see app.js.LICENSE.txt */\nvar x=1;",
			string(out.source.Content()))
	})

	t.Run("FixedText", func(t *testing.T) {
		o := newProcessor(t, CommentsConfig{Banner: BannerConfig{Text: "see licenses"}})
		out := o.process("dist/app.js", res())
		assert.Equal(t, "/*! see licenses */\nvar x=1;", string(out.source.Content()))
	})

	t.Run("Func", func(t *testing.T) {
		o := newProcessor(t, CommentsConfig{Banner: BannerConfig{
			Func: func(f string) string { return "licenses at " + f },
		}})
		out := o.process("dist/app.js", res())
		assert.Equal(t,
			"/*! licenses at dist/app.js.LICENSE.txt */\nvar x=1;",
			string(out.source.Content()))
	})

	t.Run("Disabled", func(t *testing.T) {
		o := newProcessor(t, CommentsConfig{Banner: BannerConfig{Disabled: true}})
		out := o.process("dist/app.js", res())

		assert.Equal(t, "var x=1;", string(out.source.Content()))
		assert.Equal(t, "dist/app.js.LICENSE.txt", out.commentsFilename, "comments still extracted")
		assert.Equal(t, "/*! MIT */\n", out.comments)
	})
}

func TestProcessSortsAndDeduplicatesComments(t *testing.T) {
	o := newProcessor(t, CommentsConfig{})
	out := o.process("app.js", &minify.Result{
		Code:              []byte("x"),
		ExtractedComments: []string{"/*! zlib */", "/*! MIT */", "/*! zlib */"},
	})
	assert.Equal(t, "/*! MIT */\n\n/*! zlib */\n", out.comments)
}

func TestProcessAttachesSourceMap(t *testing.T) {
	o := newProcessor(t, CommentsConfig{})
	m := []byte(`{"version":3,"sources":["a.js"],"mappings":"AAAA"}`)

	out := o.process("app.js", &minify.Result{Code: []byte("var x=1;"), Map: m})
	assert.Equal(t, m, out.source.SourceMap())
}

func TestCommentsFilenameTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		asset    string
		want     string
	}{
		{"Default", DefaultFilenameTemplate, "dist/app.js", "dist/app.js.LICENSE.txt"},
		{"QueryPreserved", DefaultFilenameTemplate, "app.js?v=abc", "app.js.LICENSE.txt?v=abc"},
		{"FixedDestination", "licenses.txt", "dist/app.js", "licenses.txt"},
		{"PathBase", "[path]licenses/[base].txt", "dist/app.min.js", "dist/licenses/app.min.js.txt"},
		{"NameExt", "[name]-licenses[ext]", "dist/app.min.js", "app.min-licenses.js"},
		{"RootAssetHasEmptyPath", "[path][name].LICENSE[ext]", "app.js", "app.LICENSE.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commentsFilename(tt.template, tt.asset))
		})
	}
}

func TestRelativeTo(t *testing.T) {
	assert.Equal(t, "app.js.LICENSE.txt", relativeTo("dist/app.js", "dist/app.js.LICENSE.txt"))
	assert.Equal(t, "app.js.LICENSE.txt", relativeTo("app.js", "app.js.LICENSE.txt"))
}
