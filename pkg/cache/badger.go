package cache

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/minifold/minifold/internal/logger"
	"github.com/minifold/minifold/pkg/fingerprint"
)

// Result entries are stored under "r:<name>:<etag>". Asset names may
// contain anything but the etag is fixed-width hex, so the final ":" is
// unambiguous.
const badgerResultPrefix = "r:"

// Badger is a persistent result cache backed by a BadgerDB directory. It
// gives cache hits across CLI invocations, which is where a build-time
// optimizer earns its keep.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) the cache database at dir.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	logger.Debug("Opened persistent result cache", logger.KeyPath, dir)
	return &Badger{db: db}, nil
}

// Get implements Cache.
func (c *Badger) Get(name string, etag fingerprint.ETag) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerResultKey(name, etag))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache read: %w", err)
	}
	return value, nil
}

// Put implements Cache.
func (c *Badger) Put(name string, etag fingerprint.ETag, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerResultKey(name, etag), value)
	})
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// Close implements Cache.
func (c *Badger) Close() error {
	return c.db.Close()
}

func badgerResultKey(name string, etag fingerprint.ETag) []byte {
	return []byte(badgerResultPrefix + name + ":" + string(etag))
}
