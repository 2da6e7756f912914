package skills

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// maxCacheEntries bounds the extraction cache. Eviction is FIFO; the
// workload is append-heavy with few repeats, so LRU buys nothing here.
const maxCacheEntries = 256

// extractionCache memoizes extraction results keyed by document hash,
// extraction kind and model name. Safe for concurrent use.
type extractionCache struct {
	mu      sync.Mutex
	entries map[string][]string
	order   []string
}

func newExtractionCache() *extractionCache {
	return &extractionCache{
		entries: make(map[string][]string),
	}
}

// cacheKey derives the cache key for a given extraction request.
func cacheKey(text string, kind Kind, model string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(sum[:]), kind, model)
}

func (c *extractionCache) get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	skills, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	// Return a copy so callers cannot mutate the cached slice.
	out := make([]string, len(skills))
	copy(out, skills)
	return out, true
}

func (c *extractionCache) put(key string, skills []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= maxCacheEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}

	stored := make([]string, len(skills))
	copy(stored, skills)
	c.entries[key] = stored
}

func (c *extractionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
