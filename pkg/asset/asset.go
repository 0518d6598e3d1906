// Package asset defines the optimizer's view of build output assets and the
// store contract through which they are read and written back.
//
// The asset store is an external collaborator: the build tool owns asset
// lifecycle, the optimizer only consumes a name→content mapping and returns
// one. Two stores ship with minifold: an in-memory store for embedding and
// tests (asset/memory) and a directory-backed store for the CLI
// (asset/dirstore).
package asset

import "errors"

// ErrNotFound is returned by Store.Get for unknown asset names.
var ErrNotFound = errors.New("asset not found")

// Info carries per-asset metadata the optimizer reads and writes.
type Info struct {
	// Minimized marks an asset as already processed. The optimizer treats
	// it as an idempotence guard: marked assets are skipped without any
	// worker or cache activity.
	Minimized bool
}

// Asset is one named unit of build output.
type Asset struct {
	Source Source
	Info   Info
}

// Matcher selects asset names for processing.
type Matcher func(name string) bool

// Store is the asset store contract.
//
// Implementations must tolerate concurrent calls for distinct names; the
// optimizer processes each name at most once per run.
type Store interface {
	// List returns the names matching the given matcher, sorted.
	List(match Matcher) []string

	// Get returns the asset stored under name, or ErrNotFound.
	Get(name string) (*Asset, error)

	// Update replaces the content and metadata of an existing asset.
	// Updating an unknown name creates it.
	Update(name string, src Source, info Info) error

	// Emit creates a new asset. Emitting over an existing name replaces
	// its content and resets its metadata.
	Emit(name string, src Source) error
}
