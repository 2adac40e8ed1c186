package fetch

import (
	"sync"
	"time"
)

// domainEntry stores the preferred client for a domain with a TTL.
type domainEntry struct {
	clientName string
	expiresAt  time.Time
}

// DomainMemory remembers which client worked for each domain. Entries
// expire after the configured TTL and are pruned periodically.
type DomainMemory struct {
	store sync.Map // domain (string) -> *domainEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewDomainMemory creates a DomainMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	dm := &DomainMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go dm.cleanupLoop()
	return dm
}

// Get returns the remembered client name for a domain, or "" if not found
// or expired.
func (dm *DomainMemory) Get(domain string) string {
	val, ok := dm.store.Load(domain)
	if !ok {
		return ""
	}
	entry := val.(*domainEntry)
	if time.Now().After(entry.expiresAt) {
		dm.store.Delete(domain)
		return ""
	}
	return entry.clientName
}

// Set records which client succeeded for a domain.
func (dm *DomainMemory) Set(domain, clientName string) {
	dm.store.Store(domain, &domainEntry{
		clientName: clientName,
		expiresAt:  time.Now().Add(dm.ttl),
	})
}

// Delete removes the memory for a domain.
func (dm *DomainMemory) Delete(domain string) {
	dm.store.Delete(domain)
}

// Stop terminates the background cleanup goroutine.
func (dm *DomainMemory) Stop() {
	close(dm.done)
}

// cleanupLoop runs every hour, deleting expired entries.
func (dm *DomainMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			now := time.Now()
			dm.store.Range(func(key, value any) bool {
				entry := value.(*domainEntry)
				if now.After(entry.expiresAt) {
					dm.store.Delete(key)
				}
				return true
			})
		}
	}
}
