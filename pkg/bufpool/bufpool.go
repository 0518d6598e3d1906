// Package bufpool provides a tiered buffer pool for minification output.
//
// Minifying a batch of assets allocates one output buffer per task, and
// under a wide worker pool those allocations dominate GC pressure. The
// pool keeps three size tiers so a buffer is reused by the next asset of
// similar size:
//   - Small buffers (default 16KB): typical single-module chunks
//   - Medium buffers (default 256KB): application bundles
//   - Large buffers (default 4MB): vendor bundles
//
// Buffers above the large tier are allocated directly and not pooled, so
// a single pathological asset does not pin memory for the whole run.
//
// All operations are safe for concurrent use via sync.Pool.
package bufpool

import (
	"sync"
)

// Default buffer size classes.
const (
	// DefaultSmallSize covers typical single-module chunks (16KB)
	DefaultSmallSize = 16 << 10

	// DefaultMediumSize covers application bundles (256KB)
	DefaultMediumSize = 256 << 10

	// DefaultLargeSize covers vendor bundles (4MB)
	DefaultLargeSize = 4 << 20
)

// Pool manages byte slice pools organized by size class. It selects the
// tier from the requested size and falls back to direct allocation for
// oversized requests.
type Pool struct {
	small      sync.Pool
	medium     sync.Pool
	large      sync.Pool
	smallSize  int
	mediumSize int
	largeSize  int
}

// Config holds configuration for creating a custom buffer pool.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a buffer pool. A nil config or zero fields use the
// defaults.
func NewPool(cfg *Config) *Pool {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.SmallSize <= 0 {
		cfg.SmallSize = DefaultSmallSize
	}
	if cfg.MediumSize <= 0 {
		cfg.MediumSize = DefaultMediumSize
	}
	if cfg.LargeSize <= 0 {
		cfg.LargeSize = DefaultLargeSize
	}

	p := &Pool{
		smallSize:  cfg.SmallSize,
		mediumSize: cfg.MediumSize,
		largeSize:  cfg.LargeSize,
	}
	p.small = sync.Pool{New: func() any {
		buf := make([]byte, p.smallSize)
		return &buf
	}}
	p.medium = sync.Pool{New: func() any {
		buf := make([]byte, p.mediumSize)
		return &buf
	}}
	p.large = sync.Pool{New: func() any {
		buf := make([]byte, p.largeSize)
		return &buf
	}}
	return p
}

// Get returns a byte slice of at least the requested size; its capacity
// may exceed the request to align with a pool tier. The caller must Put
// the buffer back when finished. Sizes above the large tier are allocated
// directly and never pooled.
func (p *Pool) Get(size int) []byte {
	var bufPtr *[]byte

	switch {
	case size <= p.smallSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= p.mediumSize:
		bufPtr = p.medium.Get().(*[]byte)
	case size <= p.largeSize:
		bufPtr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}

	buf := *bufPtr
	return buf[:size]
}

// Put returns a buffer obtained from Get to its tier. Oversized buffers
// are left to the garbage collector. The buffer must not be used after
// Put.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}

	switch cap(buf) {
	case p.smallSize:
		fullBuf := buf[:cap(buf)]
		p.small.Put(&fullBuf)
	case p.mediumSize:
		fullBuf := buf[:cap(buf)]
		p.medium.Put(&fullBuf)
	case p.largeSize:
		fullBuf := buf[:cap(buf)]
		p.large.Put(&fullBuf)
	}
}

// =============================================================================
// Global Pool
// =============================================================================

// globalPool is the package-level pool with default tiers.
var globalPool = NewPool(nil)

// Get returns a byte slice of at least the requested size from the global
// pool.
//
// Usage:
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}
