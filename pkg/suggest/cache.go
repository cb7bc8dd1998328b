package suggest

import (
	"sync"
)

// MemoryCache is a session-lifetime Cache held in a map.
// It has no size bound and no expiry.
type MemoryCache struct {
	entries map[string][]string
	mu      sync.RWMutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]string),
	}
}

func (mc *MemoryCache) Get(prefix string) ([]string, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	v, ok := mc.entries[prefix]
	if !ok {
		return nil, false
	}
	return cloneStrings(v), true
}

func (mc *MemoryCache) Put(prefix string, suggestions []string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries[prefix] = cloneStrings(suggestions)
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// cloneStrings copies s so callers never share backing arrays with the cache.
// A nil input yields an empty, non-nil slice: an empty answer is still an answer.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
