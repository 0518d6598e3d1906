package optimize

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minifold/minifold/pkg/asset"
	"github.com/minifold/minifold/pkg/asset/memory"
	"github.com/minifold/minifold/pkg/cache"
)

func newMerger(t *testing.T, c cache.Cache) *Optimizer {
	t.Helper()
	o, err := New(Config{}, squeeze(nil), WithCache(c))
	require.NoError(t, err)
	return o
}

func contentOf(t *testing.T, store *memory.Store, name string) string {
	t.Helper()
	a, err := store.Get(name)
	require.NoError(t, err)
	return string(a.Source.Content())
}

// ============================================================================
// Comment Merge Fold Tests
// ============================================================================

func TestMergeSingleDestination(t *testing.T) {
	o := newMerger(t, cache.NewMemory())
	store := memory.New()

	errs := o.mergeCommentFiles(store, []commentEntry{
		{name: "a.js", filename: "licenses.txt", comments: "/*! A */\n"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "/*! A */\n", contentOf(t, store, "licenses.txt"))
}

func TestMergeIsOrderIndependent(t *testing.T) {
	a := commentEntry{name: "a.js", filename: "licenses.txt", comments: "/*! A */\n"}
	b := commentEntry{name: "b.js", filename: "licenses.txt", comments: "/*! B */\n"}

	run := func(entries []commentEntry) string {
		o := newMerger(t, cache.NewMemory())
		store := memory.New()
		require.Empty(t, o.mergeCommentFiles(store, entries))
		return contentOf(t, store, "licenses.txt")
	}

	// Completion order differs; the fold sorts by name, so the merged
	// output must not.
	forward := run([]commentEntry{a, b})
	reverse := run([]commentEntry{b, a})

	assert.Equal(t, forward, reverse)
	assert.Contains(t, forward, "/*! A */")
	assert.Contains(t, forward, "/*! B */")
	assert.Less(t,
		assertIndex(t, forward, "/*! A */"), assertIndex(t, forward, "/*! B */"),
		"name-sorted fold puts a.js's comments first")
}

func TestMergeDeduplicatesBlocks(t *testing.T) {
	o := newMerger(t, cache.NewMemory())
	store := memory.New()

	errs := o.mergeCommentFiles(store, []commentEntry{
		{name: "a.js", filename: "licenses.txt", comments: "/*! MIT */\n"},
		{name: "b.js", filename: "licenses.txt", comments: "/*! MIT */\n"},
	})
	require.Empty(t, errs)

	merged := contentOf(t, store, "licenses.txt")
	assert.Equal(t, 1, strings.Count(merged, "/*! MIT */"))
}

func TestMergeAdoptsExistingDestination(t *testing.T) {
	o := newMerger(t, cache.NewMemory())
	store := memory.New()
	store.Add("licenses.txt", asset.NewRawString("/*! preexisting */\n"), asset.Info{})

	errs := o.mergeCommentFiles(store, []commentEntry{
		{name: "a.js", filename: "licenses.txt", comments: "/*! A */\n"},
	})
	require.Empty(t, errs)

	merged := contentOf(t, store, "licenses.txt")
	assert.Contains(t, merged, "/*! preexisting */")
	assert.Contains(t, merged, "/*! A */")
}

func TestMergeSeparateDestinations(t *testing.T) {
	o := newMerger(t, cache.NewMemory())
	store := memory.New()

	errs := o.mergeCommentFiles(store, []commentEntry{
		{name: "a.js", filename: "a.js.LICENSE.txt", comments: "/*! A */\n"},
		{name: "b.js", filename: "b.js.LICENSE.txt", comments: "/*! B */\n"},
	})
	require.Empty(t, errs)

	assert.Equal(t, "/*! A */\n", contentOf(t, store, "a.js.LICENSE.txt"))
	assert.Equal(t, "/*! B */\n", contentOf(t, store, "b.js.LICENSE.txt"))
}

func TestMergeReusesCachedResult(t *testing.T) {
	spy := &spyCache{inner: cache.NewMemory()}
	o := newMerger(t, spy)

	entries := func() []commentEntry {
		return []commentEntry{
			{name: "a.js", filename: "licenses.txt", comments: "/*! A */\n"},
			{name: "b.js", filename: "licenses.txt", comments: "/*! B */\n"},
		}
	}

	store1 := memory.New()
	require.Empty(t, o.mergeCommentFiles(store1, entries()))
	putsAfterFirst := atomic.LoadInt32(&spy.puts)
	require.Equal(t, int32(1), putsAfterFirst, "one pairwise merge, one store")

	store2 := memory.New()
	require.Empty(t, o.mergeCommentFiles(store2, entries()))
	assert.Equal(t, putsAfterFirst, atomic.LoadInt32(&spy.puts), "identical merge reuses the cached entry")

	assert.Equal(t,
		contentOf(t, store1, "licenses.txt"),
		contentOf(t, store2, "licenses.txt"))
}

func TestMergeCommentText(t *testing.T) {
	t.Run("Union", func(t *testing.T) {
		merged := mergeCommentText("/*! A */\n", "/*! B */\n")
		assert.Contains(t, merged, "/*! A */")
		assert.Contains(t, merged, "/*! B */")
	})

	t.Run("FirstOccurrenceWins", func(t *testing.T) {
		assert.Equal(t, "/*! A */\n", mergeCommentText("/*! A */\n", "/*! A */\n"))
	})
}

func assertIndex(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0)
	return i
}
