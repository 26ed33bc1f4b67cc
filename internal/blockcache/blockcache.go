// Package blockcache provides the client's process-lifetime, read-through
// cache of hash -> block bytes, so a sync pass that touches the same block
// twice (duplicate blocks within a file, or across files) only transfers
// it once.
package blockcache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache wraps an in-memory TTL cache keyed by block hash. Entries never
// need to survive past one process invocation, so a short default
// expiration is enough to bound memory on a long-running client daemon
// while giving a single sync pass full benefit.
type Cache struct {
	c *cache.Cache
}

func New() *Cache {
	return &Cache{c: cache.New(10*time.Minute, 10*time.Minute)}
}

func (bc *Cache) Get(hash string) ([]byte, bool) {
	v, ok := bc.c.Get(hash)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (bc *Cache) Set(hash string, data []byte) {
	bc.c.SetDefault(hash, data)
}
