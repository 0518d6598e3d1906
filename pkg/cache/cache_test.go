package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minifold/minifold/pkg/fingerprint"
)

// ============================================================================
// Contract Tests
// ============================================================================

// caches returns one instance of every implementation, so the contract is
// asserted uniformly.
func caches(t *testing.T) map[string]Cache {
	t.Helper()

	bdg, err := NewBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdg.Close() })

	return map[string]Cache{
		"memory": NewMemory(),
		"badger": bdg,
	}
}

func TestCacheContract(t *testing.T) {
	etag := fingerprint.New([]byte("var x=1;"))
	other := fingerprint.New([]byte("var x=2;"))

	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("MissOnEmpty", func(t *testing.T) {
				_, err := c.Get("dist/app.js", etag)
				assert.ErrorIs(t, err, ErrCacheMiss)
			})

			t.Run("PutThenGet", func(t *testing.T) {
				require.NoError(t, c.Put("dist/app.js", etag, []byte("payload")))

				got, err := c.Get("dist/app.js", etag)
				require.NoError(t, err)
				assert.Equal(t, []byte("payload"), got)
			})

			t.Run("EtagSelectsEntry", func(t *testing.T) {
				_, err := c.Get("dist/app.js", other)
				assert.ErrorIs(t, err, ErrCacheMiss)
			})

			t.Run("NameSelectsEntry", func(t *testing.T) {
				_, err := c.Get("dist/other.js", etag)
				assert.ErrorIs(t, err, ErrCacheMiss)
			})
		})
	}
}

func TestMemoryCopiesValue(t *testing.T) {
	c := NewMemory()
	etag := fingerprint.New([]byte("in"))

	buf := []byte("payload")
	require.NoError(t, c.Put("a.js", etag, buf))
	buf[0] = 'X'

	got, err := c.Get("a.js", etag)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	etag := fingerprint.New([]byte("var x=1;"))

	c, err := NewBadger(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put("dist/app.js", etag, []byte("payload")))
	require.NoError(t, c.Close())

	c, err = NewBadger(dir)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get("dist/app.js", etag)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	etag := fingerprint.New([]byte("x"))

	require.NoError(t, c.Put("a.js", etag, []byte("v")))
	_, err := c.Get("a.js", etag)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Close())
}
