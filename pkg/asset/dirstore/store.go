// Package dirstore provides a directory-backed asset store: assets are
// files under a root directory, named by their slash-separated relative
// path. A sidecar file "<name>.map" is treated as the asset's input source
// map. This is the store the CLI runs against.
package dirstore

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/minifold/minifold/pkg/asset"
)

// Store reads and writes assets under a root directory.
//
// Asset info is tracked in memory for the lifetime of the store: the
// filesystem has no place for a "minimized" bit, so idempotence across
// separate CLI invocations is provided by the result cache, not by Info.
type Store struct {
	root string

	mu   sync.RWMutex
	info map[string]asset.Info
}

// New creates a store over the given root directory.
func New(root string) (*Store, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("asset root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("asset root %q is not a directory", root)
	}
	return &Store{root: root, info: make(map[string]asset.Info)}, nil
}

// List implements asset.Store. Source map sidecars are never listed as
// assets in their own right.
func (s *Store) List(match asset.Matcher) []string {
	var names []string

	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		name := filepath.ToSlash(rel)
		if strings.HasSuffix(name, ".map") {
			return nil
		}
		if match == nil || match(name) {
			names = append(names, name)
		}
		return nil
	})

	sort.Strings(names)
	return names
}

// Get implements asset.Store.
func (s *Store) Get(name string) (*asset.Asset, error) {
	content, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, asset.ErrNotFound
		}
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}

	var src asset.Source
	if rawMap, mapErr := os.ReadFile(s.path(name + ".map")); mapErr == nil {
		src = asset.NewMapped(content, rawMap)
	} else {
		src = asset.NewRaw(content)
	}

	s.mu.RLock()
	info := s.info[name]
	s.mu.RUnlock()

	return &asset.Asset{Source: src, Info: info}, nil
}

// Update implements asset.Store. The asset's map, when present, is written
// to the ".map" sidecar.
func (s *Store) Update(name string, src asset.Source, info asset.Info) error {
	if err := s.write(name, src); err != nil {
		return err
	}

	s.mu.Lock()
	s.info[name] = info
	s.mu.Unlock()
	return nil
}

// Emit implements asset.Store.
func (s *Store) Emit(name string, src asset.Source) error {
	if err := s.write(name, src); err != nil {
		return err
	}

	s.mu.Lock()
	s.info[name] = asset.Info{}
	s.mu.Unlock()
	return nil
}

func (s *Store) write(name string, src asset.Source) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	content := src.Content()
	// Unchanged content is not rewritten, so watchers (including our own
	// watch mode) do not see phantom modifications.
	if existing, err := os.ReadFile(path); err != nil || !bytes.Equal(existing, content) {
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("write asset %s: %w", name, err)
		}
	}
	if m := src.SourceMap(); m != nil {
		if existing, err := os.ReadFile(path + ".map"); err != nil || !bytes.Equal(existing, m) {
			if err := os.WriteFile(path+".map", m, 0644); err != nil {
				return fmt.Errorf("write asset map %s: %w", name, err)
			}
		}
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}
