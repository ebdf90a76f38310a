package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"apidoc/internal/port"
)

// DefaultSize is the number of rendered texts kept when no size is given.
const DefaultSize = 512

// RenderCache is a bounded LRU of rendered text keyed by the source text.
// Rendering is a pure function, so entries never go stale.
type RenderCache struct {
	cache  *lru.Cache[string, string]
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewRenderCache(maxSize int) *RenderCache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[string, string](maxSize)
	return &RenderCache{cache: c}
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16])
}

func (c *RenderCache) Get(text string) (string, bool) {
	out, ok := c.cache.Get(cacheKey(text))
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return out, true
}

func (c *RenderCache) Put(text, rendered string) {
	c.cache.Add(cacheKey(text), rendered)
}

func (c *RenderCache) Size() int {
	return c.cache.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *RenderCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// CachedRenderer memoizes a renderer. Errors are not cached.
type CachedRenderer struct {
	renderer port.Renderer
	cache    *RenderCache
}

var _ port.Renderer = (*CachedRenderer)(nil)

func NewCachedRenderer(renderer port.Renderer, cache *RenderCache) *CachedRenderer {
	return &CachedRenderer{
		renderer: renderer,
		cache:    cache,
	}
}

func (r *CachedRenderer) Render(text string) (string, error) {
	if out, hit := r.cache.Get(text); hit {
		return out, nil
	}

	out, err := r.renderer.Render(text)
	if err != nil {
		return "", err
	}

	r.cache.Put(text, out)

	return out, nil
}
