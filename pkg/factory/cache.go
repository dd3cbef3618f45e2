package factory

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pioneers/typpo/pkg/schema"
)

// DefaultCacheSize is the capacity of the cache shared by factories made
// without WithCache.
const DefaultCacheSize = 16

// defaultCache is shared by all factories that don't specify their own.
var defaultCache, _ = NewCache(DefaultCacheSize)

// Cache keeps recently loaded schema sets so that loading the same type
// file on top of the same base for the same target is done once per
// process. Sets are immutable, so handing one out to several factories is
// safe. A nil *Cache is valid and caches nothing.
type Cache struct {
	sets *lru.Cache
}

type cacheEntry struct {
	src  []byte
	base uint64
	set  *schema.Set
}

// NewCache creates a cache holding up to size sets. A non-positive size
// returns a nil cache.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{sets: c}, nil
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.sets.Len()
}

// Purge drops every cached set.
func (c *Cache) Purge() {
	if c != nil {
		c.sets.Purge()
	}
}

func (c *Cache) get(key uint64, src []byte, base *schema.Set) (*schema.Set, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.sets.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*cacheEntry)
	// Fingerprints are 64-bit hashes, the source decides.
	if e.base != base.Fingerprint() || !bytes.Equal(e.src, src) {
		return nil, false
	}
	return e.set, true
}

func (c *Cache) add(key uint64, src []byte, base *schema.Set, s *schema.Set) {
	if c == nil {
		return
	}
	cp := make([]byte, len(src))
	copy(cp, src)
	c.sets.Add(key, &cacheEntry{src: cp, base: base.Fingerprint(), set: s})
}
