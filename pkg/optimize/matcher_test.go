package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatcher(t *testing.T) {
	m, err := NewMatcher(MatchConfig{})
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"app.js", true},
		{"app.mjs", true},
		{"app.cjs", true},
		{"dist/vendor.JS", true},
		{"app.js?v=123", true},
		{"app.js.LICENSE.txt", false},
		{"style.css", false},
		{"app.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m(tt.name))
		})
	}
}

func TestMatcherIncludeExclude(t *testing.T) {
	m, err := NewMatcher(MatchConfig{
		Include: []string{`^dist/`},
		Exclude: []string{`vendor`},
	})
	require.NoError(t, err)

	assert.True(t, m("dist/app.js"))
	assert.False(t, m("lib/app.js"), "outside include")
	assert.False(t, m("dist/vendor.js"), "excluded")
}

func TestMatcherCustomTest(t *testing.T) {
	m, err := NewMatcher(MatchConfig{Test: []string{`\.bundle\.js$`}})
	require.NoError(t, err)

	assert.True(t, m("app.bundle.js"))
	assert.False(t, m("app.js"), "custom test replaces the default")
}

func TestMatcherRejectsBadPattern(t *testing.T) {
	_, err := NewMatcher(MatchConfig{Exclude: []string{"("}})
	assert.Error(t, err)
}
