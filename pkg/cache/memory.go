package cache

import (
	"sync"

	"github.com/minifold/minifold/pkg/fingerprint"
)

// Memory is an in-process result cache. It lives for the process and is
// the default for embedded use and watch mode, where repeated runs over
// mostly-unchanged assets happen within one process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get implements Cache.
func (c *Memory) Get(name string, etag fingerprint.ETag) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.entries[memoryKey(name, etag)]
	if !ok {
		return nil, ErrCacheMiss
	}
	return value, nil
}

// Put implements Cache. The value is copied so callers may reuse their
// buffer after the call.
func (c *Memory) Put(name string, etag fingerprint.ETag, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memoryKey(name, etag)] = cp
	return nil
}

// Close implements Cache.
func (c *Memory) Close() error { return nil }

// Len returns the number of entries, for tests and stats reporting.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func memoryKey(name string, etag fingerprint.ETag) string {
	return name + "\x00" + string(etag)
}
