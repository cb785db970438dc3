package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// recordCache provides thread-safe LRU caching for loaded schema records.
type recordCache struct {
	cache *lru.Cache[string, *Record]
}

// newRecordCache creates a new LRU cache with the specified maximum number of items.
func newRecordCache(maxItems int) (*recordCache, error) {
	c, err := lru.New[string, *Record](maxItems)
	if err != nil {
		return nil, err
	}
	return &recordCache{cache: c}, nil
}

// Get returns a copy of the cached record for name.
func (c *recordCache) Get(name string) (*Record, bool) {
	rec, ok := c.cache.Get(name)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put stores a copy of rec under its name.
func (c *recordCache) Put(rec *Record) {
	c.cache.Add(rec.Name, rec.Clone())
}

func (c *recordCache) Remove(name string) {
	c.cache.Remove(name)
}

func (c *recordCache) Len() int {
	return c.cache.Len()
}
