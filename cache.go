package blog

import (
	"context"
	"sync"
	"time"

	"github.com/luebbehusen/blog/content"
)

// CollectionLoader loads the post collection. *content.Loader satisfies it.
type CollectionLoader interface {
	LoadCollection(ctx context.Context) (*content.Collection, error)
}

// PostCache is an in-memory cache of the post collection with a TTL, so the
// dev server picks up edits to content files without a restart.
type PostCache struct {
	mu      sync.RWMutex
	coll    *content.Collection
	fetched time.Time
	ttl     time.Duration
	loader  CollectionLoader
}

// NewPostCache creates a PostCache backed by the given loader.
func NewPostCache(l CollectionLoader, ttl time.Duration) *PostCache {
	return &PostCache{loader: l, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.coll != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.coll = nil
	c.mu.Unlock()
}

// Collection returns the cached collection, reloading it when stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) Collection(ctx context.Context) (*content.Collection, error) {
	c.mu.RLock()
	if c.valid() {
		coll := c.coll
		c.mu.RUnlock()
		return coll, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.coll, nil
	}
	coll, err := c.loader.LoadCollection(ctx)
	if err != nil {
		return nil, err
	}
	c.coll = coll
	c.fetched = time.Now()
	return coll, nil
}

// ListPosts returns every post, newest first.
func (c *PostCache) ListPosts(ctx context.Context) ([]content.Post, error) {
	coll, err := c.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return coll.All(), nil
}

// GetPost returns a single post by slug.
func (c *PostCache) GetPost(ctx context.Context, slug string) (content.Post, error) {
	coll, err := c.Collection(ctx)
	if err != nil {
		return content.Post{}, err
	}
	p, ok := coll.Get(slug)
	if !ok {
		return content.Post{}, ErrNotFound
	}
	return p, nil
}
