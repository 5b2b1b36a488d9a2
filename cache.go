package cocktailsgram

import (
	"sync"
	"time"
)

// CatalogueCache is an in-memory cache of the tag list and the anonymous
// first page of recipes, with TTL. Writes invalidate it.
type CatalogueCache struct {
	mu        sync.RWMutex
	tags      []Tag
	firstPage []Recipe
	total     int
	fetched   time.Time
	loaded    bool
	ttl       time.Duration
	store     *Store
}

// NewCatalogueCache creates a CatalogueCache backed by the given Store.
func NewCatalogueCache(s *Store, ttl time.Duration) *CatalogueCache {
	return &CatalogueCache{store: s, ttl: ttl}
}

func (c *CatalogueCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CatalogueCache) Invalidate() {
	c.mu.Lock()
	c.tags = nil
	c.firstPage = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *CatalogueCache) load() error {
	if c.valid() {
		return nil
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	recipes, total, err := c.store.ListRecipes(RecipeFilter{Page: 1})
	if err != nil {
		return err
	}
	c.tags = tags
	c.firstPage = recipes
	c.total = total
	c.fetched = time.Now()
	c.loaded = true
	return nil
}

// ensureLoaded returns the cached values after ensuring the cache is fresh.
// It tries a read lock first and only takes the write lock when a reload is
// needed.
func (c *CatalogueCache) ensureLoaded() ([]Tag, []Recipe, int, error) {
	c.mu.RLock()
	if c.valid() {
		tags, page, total := c.tags, c.firstPage, c.total
		c.mu.RUnlock()
		return tags, page, total, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, 0, err
	}
	return c.tags, c.firstPage, c.total, nil
}

// ListTags returns all tags.
func (c *CatalogueCache) ListTags() ([]Tag, error) {
	tags, _, _, err := c.ensureLoaded()
	return tags, err
}

// ListRecipes serves the unfiltered anonymous first page from memory and
// passes every other query through to the store.
func (c *CatalogueCache) ListRecipes(f RecipeFilter) ([]Recipe, int, error) {
	cacheable := len(f.Tags) == 0 && f.AuthorID == 0 && f.FavoritedBy == 0 &&
		f.InCartOf == 0 && f.Viewer == 0 && f.Page <= 1 && (f.Limit == 0 || f.Limit == defaultPageSize)
	if !cacheable {
		return c.store.ListRecipes(f)
	}
	_, page, total, err := c.ensureLoaded()
	return page, total, err
}
