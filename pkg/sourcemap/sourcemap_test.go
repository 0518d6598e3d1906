package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMap maps generated line 2, column 5 to src/foo.js line 10, column 3.
// Segment "KASG" decodes as [5, 0, 9, 3]; the leading ";" is the empty
// first generated line.
const testMap = `{"version":3,"sources":["src/foo.js"],"sourcesContent":[null],"names":[],"mappings":";KASG"}`

// ============================================================================
// Shape Check Tests
// ============================================================================

func TestCheck(t *testing.T) {
	t.Run("ValidMapPasses", func(t *testing.T) {
		assert.NoError(t, Check([]byte(testMap)))
	})

	t.Run("NonObjectFails", func(t *testing.T) {
		assert.ErrorIs(t, Check([]byte(`"not a map"`)), ErrNotObject)
	})

	t.Run("MissingVersionFails", func(t *testing.T) {
		err := Check([]byte(`{"sources":[],"mappings":""}`))
		assert.Error(t, err)
	})

	t.Run("SourcesNotArrayFails", func(t *testing.T) {
		err := Check([]byte(`{"version":3,"sources":"nope","mappings":""}`))
		assert.Error(t, err)
	})

	t.Run("MappingsNotStringFails", func(t *testing.T) {
		err := Check([]byte(`{"version":3,"sources":[],"mappings":42}`))
		assert.Error(t, err)
	})
}

// ============================================================================
// Resolution Tests
// ============================================================================

func TestResolver(t *testing.T) {
	t.Run("ResolvesMappedPosition", func(t *testing.T) {
		r, err := NewResolver([]byte(testMap))
		require.NoError(t, err)

		pos, ok := r.Resolve(2, 5)
		require.True(t, ok)
		assert.Equal(t, "src/foo.js", pos.Source)
		assert.Equal(t, 10, pos.Line)
		assert.Equal(t, 3, pos.Column)
	})

	t.Run("UnmappedLineDegrades", func(t *testing.T) {
		r, err := NewResolver([]byte(testMap))
		require.NoError(t, err)

		_, ok := r.Resolve(1, 0)
		assert.False(t, ok)
	})

	t.Run("ZeroLineDegrades", func(t *testing.T) {
		r, err := NewResolver([]byte(testMap))
		require.NoError(t, err)

		_, ok := r.Resolve(0, 0)
		assert.False(t, ok)
	})

	t.Run("GarbageFailsParse", func(t *testing.T) {
		_, err := NewResolver([]byte("{"))
		assert.Error(t, err)
	})
}
