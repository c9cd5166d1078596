package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry is a cached completion.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// responseCache provides thread-safe TTL caching of completions keyed by prompt.
type responseCache struct {
	entries   map[string]cacheEntry
	stopCh    chan struct{}
	ttl       time.Duration
	mu        sync.RWMutex
	closeOnce sync.Once
}

// newResponseCache creates a new cache with the specified TTL.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// cacheKey derives a fixed-size key from the system and user prompts.
func cacheKey(system, prompt string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// get retrieves a completion if it exists and hasn't expired.
func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return "", false
	}

	return entry.text, true
}

// set stores a completion in the cache.
func (c *responseCache) set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		text:   text,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *responseCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *responseCache) Close() {
	c.closeOnce.Do(func() { close(c.stopCh) })
}
