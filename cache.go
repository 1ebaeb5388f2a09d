package summitlog

import (
	"sync"
	"time"

	"github.com/summitlog/summitlog/content"
)

// collectionCache is an in-memory snapshot of the parsed collection with a
// TTL. Writes go straight to disk; the cache is invalidated after every
// successful write so reads see the new file on the next request.
type collectionCache struct {
	mu         sync.RWMutex
	records    []content.PeakRecord
	fetched    time.Time
	ttl        time.Duration
	collection *content.Collection
}

func newCollectionCache(c *content.Collection, ttl time.Duration) *collectionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &collectionCache{collection: c, ttl: ttl}
}

func (c *collectionCache) valid() bool {
	return c.records != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the snapshot so the next read rescans the content dir.
func (c *collectionCache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached records after refreshing when stale.
// Tries a read lock first; takes the write lock only to reload.
func (c *collectionCache) ensureLoaded() ([]content.PeakRecord, error) {
	c.mu.RLock()
	if c.valid() {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.records, nil
	}
	records, err := c.collection.List()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []content.PeakRecord{}
	}
	c.records = records
	c.fetched = time.Now()
	return c.records, nil
}

// List returns all parseable records, drafts included.
func (c *collectionCache) List() ([]content.PeakRecord, error) {
	return c.ensureLoaded()
}

// Published returns non-draft records only.
func (c *collectionCache) Published() ([]content.PeakRecord, error) {
	records, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var published []content.PeakRecord
	for _, r := range records {
		if !r.Draft {
			published = append(published, r)
		}
	}
	return published, nil
}

// Get returns a single record by slug from the snapshot.
func (c *collectionCache) Get(slug string) (content.PeakRecord, error) {
	records, err := c.ensureLoaded()
	if err != nil {
		return content.PeakRecord{}, err
	}
	for _, r := range records {
		if r.Slug == slug {
			return r, nil
		}
	}
	return content.PeakRecord{}, content.ErrNotFound
}
