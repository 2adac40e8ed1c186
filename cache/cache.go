// Package cache holds recently built profiles so repeat requests for the
// same company skip the search/fetch/extract round trip.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/lead-agent/prospect/models"
)

// entry holds a cached profile with its creation timestamp.
type entry struct {
	profile   *models.Profile
	createdAt time.Time
}

// Cache is a simple in-memory cache for built profiles.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict expired entries
// (older than 24 hours — stale profile data ages slowly).
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the company name and its known website.
// Two requests for the same name with different known websites are
// different profiles.
func Key(companyName, website string) string {
	h := sha256.New()
	h.Write([]byte(companyName))
	h.Write([]byte("|"))
	h.Write([]byte(website))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached profile if it exists and is younger than maxAge
// seconds. If maxAge <= 0, no cache lookup is performed. Returns the
// profile and whether it was a cache hit.
func (c *Cache) Get(key string, maxAgeSeconds int) (*models.Profile, bool) {
	if maxAgeSeconds <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeSeconds) * time.Second
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	return e.profile, true
}

// Set stores a profile in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, profile *models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		profile:   profile,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 24 hours every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-24 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
