package llm

import (
	"sync"

	"github.com/wordpath/wordpath-api/internal/llm"
)

// translationCache is a bounded FIFO cache of word translations. Imports of
// overlapping word lists are common, and dictionary content for a word never
// changes, so cache hits skip the model entirely. When the cache is full the
// oldest entry is evicted.
type translationCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]llm.Translation
	order    []string
}

func newTranslationCache(capacity int) *translationCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &translationCache{
		capacity: capacity,
		entries:  make(map[string]llm.Translation, capacity),
	}
}

func (c *translationCache) get(word string) (llm.Translation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[word]
	return t, ok
}

func (c *translationCache) put(word string, t llm.Translation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[word]; exists {
		c.entries[word] = t
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[word] = t
	c.order = append(c.order, word)
}

func (c *translationCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
