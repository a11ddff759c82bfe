package statcan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache stores downloaded table CSVs on disk so repeated runs against an
// unchanged release skip the network.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) a cache under dir. An empty dir gives an
// in-memory cache.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open table cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, true, nil
}

func (c *Cache) Put(key string, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// CachedProvider wraps a Provider with a Cache.
type CachedProvider struct {
	Next     Provider
	Cache    *Cache
	Language string
	Logger   *slog.Logger
}

func (p CachedProvider) TableCSV(ctx context.Context, tableID string) ([]byte, error) {
	key := fmt.Sprintf("table/%s/%s", tableID, p.Language)

	content, ok, err := p.Cache.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Logger.Info("table cache hit", "table", tableID, "bytes", len(content))
		return content, nil
	}

	content, err = p.Next.TableCSV(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Put(key, content); err != nil {
		// a failed cache write does not invalidate the download
		p.Logger.Warn("table cache write failed", "table", tableID, "error", err)
	}
	return content, nil
}
