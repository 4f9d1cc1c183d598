package schema

import (
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled struct schemas kept in memory.
const DefaultCacheSize = 512

// cache holds compiled struct schemas keyed by Go type.
var cache = newSchemaCache(DefaultCacheSize)

// schemaCache is a thread-safe LRU of compiled schemas.
type schemaCache struct {
	lru *lru.Cache[reflect.Type, any]
}

func newSchemaCache(size int) *schemaCache {
	c, err := lru.New[reflect.Type, any](size)
	if err != nil {
		panic(err)
	}
	return &schemaCache{lru: c}
}

func (c *schemaCache) get(t reflect.Type) (any, bool) {
	return c.lru.Get(t)
}

func (c *schemaCache) add(t reflect.Type, s any) {
	c.lru.Add(t, s)
}

// CachedSchemas returns the number of struct schemas currently cached.
func CachedSchemas() int {
	return cache.lru.Len()
}

// PurgeCache drops every cached struct schema.
func PurgeCache() {
	cache.lru.Purge()
}
