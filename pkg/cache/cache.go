// Package cache defines the result cache contract and its implementations.
//
// The cache is content-addressed: entries are keyed by asset name together
// with the fingerprint of everything that influenced the result (input
// bytes, minifier identity, normalized options). A stale entry is therefore
// impossible by construction; invalidation is just a key that never gets
// looked up again.
package cache

import (
	"errors"

	"github.com/minifold/minifold/pkg/fingerprint"
)

// ErrCacheMiss is returned by Get when no entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque result payloads under (name, etag) keys.
//
// Implementations must be safe for concurrent use. A Get that races a Put
// for the same key may return either a miss or the stored value; both are
// correct because values under the same key are identical.
type Cache interface {
	// Get returns the payload stored under the key, or ErrCacheMiss.
	Get(name string, etag fingerprint.ETag) ([]byte, error)

	// Put stores a payload under the key. Overwriting an existing entry
	// is allowed and writes an identical value.
	Put(name string, etag fingerprint.ETag, value []byte) error

	// Close releases any resources held by the cache.
	Close() error
}

// Nop is a cache that stores nothing. It is used when caching is disabled
// so the orchestrator never branches on a nil cache.
type Nop struct{}

// Get implements Cache.
func (Nop) Get(string, fingerprint.ETag) ([]byte, error) { return nil, ErrCacheMiss }

// Put implements Cache.
func (Nop) Put(string, fingerprint.ETag, []byte) error { return nil }

// Close implements Cache.
func (Nop) Close() error { return nil }
