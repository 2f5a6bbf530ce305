package thermo

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

type stateKey struct {
	T, P float64
}

// Cached memoizes successful lookups of an underlying Provider.
type Cached struct {
	src Provider

	mu     sync.Mutex
	cache  *lru.Cache
	hits   int
	misses int
}

func NewCached(src Provider, size int) *Cached {
	if size <= 0 {
		size = 1024
	}
	return &Cached{src: src, cache: lru.New(size)}
}

func (c *Cached) Properties(T, P float64) (Properties, error) {
	key := stateKey{T, P}

	c.mu.Lock()
	if v, ok := c.cache.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return v.(Properties), nil
	}
	c.misses++
	c.mu.Unlock()

	p, err := c.src.Properties(T, P)
	if err != nil {
		return Properties{}, err
	}

	c.mu.Lock()
	c.cache.Add(key, p)
	c.mu.Unlock()
	return p, nil
}

// Stats reports cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
