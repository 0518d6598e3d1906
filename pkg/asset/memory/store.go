// Package memory provides an in-memory asset store, used by tests and by
// build tools embedding the optimizer over assets they already hold.
package memory

import (
	"sort"
	"sync"

	"github.com/minifold/minifold/pkg/asset"
)

// Store is a concurrency-safe in-memory asset store.
type Store struct {
	mu     sync.RWMutex
	assets map[string]*asset.Asset
}

// New creates an empty store.
func New() *Store {
	return &Store{assets: make(map[string]*asset.Asset)}
}

// Add seeds the store with an asset. Intended for setup code; equivalent to
// Emit followed by Update of the info.
func (s *Store) Add(name string, src asset.Source, info asset.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = &asset.Asset{Source: src, Info: info}
}

// List implements asset.Store.
func (s *Store) List(match asset.Matcher) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.assets))
	for name := range s.assets {
		if match == nil || match(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Get implements asset.Store.
func (s *Store) Get(name string) (*asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[name]
	if !ok {
		return nil, asset.ErrNotFound
	}
	// Shallow copy so callers cannot flip stored info behind the lock.
	cp := *a
	return &cp, nil
}

// Update implements asset.Store.
func (s *Store) Update(name string, src asset.Source, info asset.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = &asset.Asset{Source: src, Info: info}
	return nil
}

// Emit implements asset.Store.
func (s *Store) Emit(name string, src asset.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = &asset.Asset{Source: src}
	return nil
}
