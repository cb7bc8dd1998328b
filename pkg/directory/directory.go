// Package directory holds the set of user names served by the user_suggest
// endpoint and answers case-sensitive "starts with" lookups over it.
package directory

import (
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	// DefaultLimit caps the number of names returned per lookup.
	DefaultLimit = 10
	// DefaultMinPrefix is the shortest prefix answered with names.
	DefaultMinPrefix = 3
)

// Directory is a prefix-searchable set of user names.
type Directory struct {
	trie      *patricia.Trie
	count     int
	minPrefix int
	mu        sync.RWMutex
}

func New() *Directory {
	return &Directory{
		trie:      patricia.NewTrie(),
		minPrefix: DefaultMinPrefix,
	}
}

// SetMinPrefix changes the shortest prefix answered. Values below 1 are ignored.
func (d *Directory) SetMinPrefix(n int) {
	if n < 1 {
		return
	}
	d.mu.Lock()
	d.minPrefix = n
	d.mu.Unlock()
}

// Add inserts name. Empty names and duplicates are ignored.
func (d *Directory) Add(name string) bool {
	if name == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.trie.Insert(patricia.Prefix(name), struct{}{}) {
		d.count++
		return true
	}
	return false
}

// AddAll inserts every name and returns how many were new.
func (d *Directory) AddAll(names []string) int {
	added := 0
	for _, n := range names {
		if d.Add(n) {
			added++
		}
	}
	return added
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Suggest returns up to limit names starting with prefix, in lexical order.
// Prefixes shorter than the minimum yield an empty, non-nil slice.
// A limit below 1 falls back to DefaultLimit.
func (d *Directory) Suggest(prefix string, limit int) []string {
	if limit < 1 {
		limit = DefaultLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if utf8.RuneCountInString(prefix) < d.minPrefix {
		return []string{}
	}

	var names []string
	err := d.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		names = append(names, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting directory subtree: %v", err)
		return []string{}
	}

	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	if names == nil {
		names = []string{}
	}
	return names
}

// Names returns every name in lexical order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, d.count)
	_ = d.trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		names = append(names, string(p))
		return nil
	})
	sort.Strings(names)
	return names
}
