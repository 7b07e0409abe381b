package cache

import (
	"context"
	"sync"
	"time"

	"github.com/invoicedash/backend/internal/domain/shared"
)

type viewEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryViewCache implements shared.ViewCache using an in-memory map.
// It is suitable for single-instance deployments and testing.
type InMemoryViewCache struct {
	mu        sync.RWMutex
	paths     map[string]map[string]viewEntry
	gens      map[string]uint64
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryViewCache creates a new in-memory view cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryViewCache() *InMemoryViewCache {
	c := &InMemoryViewCache{
		paths:    make(map[string]map[string]viewEntry),
		gens:     make(map[string]uint64),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached payload for path and variant
func (c *InMemoryViewCache) Get(_ context.Context, path, variant string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.paths[path][variant]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Generation returns the current generation of path
func (c *InMemoryViewCache) Generation(_ context.Context, path string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gens[path], nil
}

// Set stores a payload for path and variant with a TTL unless path has been
// invalidated since generation was read
func (c *InMemoryViewCache) Set(_ context.Context, path, variant string, value []byte, ttl time.Duration, generation uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[path] != generation {
		return false, nil
	}

	variants, ok := c.paths[path]
	if !ok {
		variants = make(map[string]viewEntry)
		c.paths[path] = variants
	}
	variants[variant] = viewEntry{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// Invalidate drops every cached variant of path and advances its generation
func (c *InMemoryViewCache) Invalidate(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.paths, path)
	c.gens[path]++
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryViewCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryViewCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryViewCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for path, variants := range c.paths {
		for variant, e := range variants {
			if now.After(e.expiresAt) {
				delete(variants, variant)
			}
		}
		if len(variants) == 0 {
			delete(c.paths, path)
		}
	}
}

// Size returns the number of cached variants across all paths
func (c *InMemoryViewCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, variants := range c.paths {
		n += len(variants)
	}
	return n
}

// Ensure InMemoryViewCache implements ViewCache
var _ shared.ViewCache = (*InMemoryViewCache)(nil)
