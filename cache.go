package schemaref

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies a document: the loader that produced it and its
// fragment-free location.
type cacheKey struct {
	loader   uint64
	location string
}

// docCache memoizes successful loads. A nil *docCache caches nothing.
type docCache struct {
	lru *lru.Cache[cacheKey, any]
}

func newDocCache(size int) *docCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[cacheKey, any](size)
	if err != nil {
		return nil
	}
	return &docCache{lru: c}
}

func (c *docCache) get(k cacheKey) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(k)
}

func (c *docCache) add(k cacheKey, v any) {
	if c != nil {
		c.lru.Add(k, v)
	}
}

func (c *docCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *docCache) purge() {
	if c != nil {
		c.lru.Purge()
	}
}
