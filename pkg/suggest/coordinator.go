package suggest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// DefaultMinPrefix is the shortest prefix that triggers a lookup.
const DefaultMinPrefix = 3

// Step is the coordinator's verdict for a single keystroke.
type Step int

const (
	// StepIgnored means the prefix was too short; nothing is cleared or fetched.
	StepIgnored Step = iota
	// StepHit means the suggestions came from the cache.
	StepHit
	// StepMiss means a fetch must be issued for the prefix.
	StepMiss
	// StepPending means the prefix is a miss already being fetched.
	StepPending
)

func (s Step) String() string {
	switch s {
	case StepIgnored:
		return "ignored"
	case StepHit:
		return "hit"
	case StepMiss:
		return "miss"
	case StepPending:
		return "pending"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Response carries the outcome of one fetch back to the coordinator.
type Response struct {
	Prefix      string
	Suggestions []string
	Err         error
}

// Stats counts what the coordinator did since it was created.
type Stats struct {
	Hits     int
	Misses   int
	Fetches  int
	Failures int
	Stale    int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMinPrefix overrides DefaultMinPrefix. Values below 1 are ignored.
func WithMinPrefix(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.minPrefix = n
		}
	}
}

// Coordinator serves suggestions from its Cache or fetches them.
// A Coordinator belongs to one input; the Cache may be shared.
type Coordinator struct {
	cache     Cache
	fetcher   Fetcher
	minPrefix int
	latest    string
	inflight  map[string]struct{}
	stats     Stats
	mu        sync.Mutex
	wg        sync.WaitGroup

	// held by Keyup from classification to render, and from Complete to render
	renderMu sync.Mutex
}

// ErrNoFetcher is returned for every fetch of a coordinator built without a Fetcher.
var ErrNoFetcher = errors.New("no fetcher configured")

type missingFetcher struct{}

func (missingFetcher) Fetch(context.Context, string) ([]string, error) {
	return nil, ErrNoFetcher
}

// NewCoordinator creates a coordinator over cache and fetcher.
// A nil cache gets a fresh MemoryCache. A nil fetcher fails every miss
// with ErrNoFetcher.
func NewCoordinator(cache Cache, fetcher Fetcher, opts ...Option) *Coordinator {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if fetcher == nil {
		fetcher = missingFetcher{}
	}
	c := &Coordinator{
		cache:     cache,
		fetcher:   fetcher,
		minPrefix: DefaultMinPrefix,
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MinPrefix returns the configured minimum prefix length in runes.
func (c *Coordinator) MinPrefix() int {
	return c.minPrefix
}

// Begin records prefix as the latest keystroke and classifies it.
// On StepHit the cached suggestions are returned. On StepMiss the caller
// owns the fetch and must hand its Response to Complete.
func (c *Coordinator) Begin(prefix string) (Step, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = prefix
	if utf8.RuneCountInString(prefix) < c.minPrefix {
		return StepIgnored, nil
	}

	if data, ok := c.cache.Get(prefix); ok {
		c.stats.Hits++
		log.Debug("cache hit", "prefix", prefix, "count", len(data))
		return StepHit, data
	}

	c.stats.Misses++
	if _, busy := c.inflight[prefix]; busy {
		log.Debug("fetch already in flight", "prefix", prefix)
		return StepPending, nil
	}
	c.inflight[prefix] = struct{}{}
	return StepMiss, nil
}

// Fetch asks the Fetcher for prefix. It blocks and does not touch the cache.
func (c *Coordinator) Fetch(ctx context.Context, prefix string) Response {
	c.mu.Lock()
	c.stats.Fetches++
	c.mu.Unlock()

	data, err := c.fetcher.Fetch(ctx, prefix)
	if err != nil {
		return Response{Prefix: prefix, Err: fmt.Errorf("fetch %q: %w", prefix, err)}
	}
	return Response{Prefix: prefix, Suggestions: data}
}

// Complete applies a fetch Response. Successful results are cached under
// their exact prefix. The returned bool reports whether the caller should
// render: false on failure, and false when the user has moved on to a
// different prefix since the request was issued.
func (c *Coordinator) Complete(resp Response) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, resp.Prefix)

	if resp.Err != nil {
		c.stats.Failures++
		log.Warn("suggestion fetch failed", "prefix", resp.Prefix, "err", resp.Err)
		return nil, false
	}

	c.cache.Put(resp.Prefix, resp.Suggestions)

	if resp.Prefix != c.latest {
		c.stats.Stale++
		log.Debug("dropping stale response", "prefix", resp.Prefix, "latest", c.latest)
		return nil, false
	}
	return cloneStrings(resp.Suggestions), true
}

// Keyup runs the whole flow for one keystroke. Hits call render before
// Keyup returns; misses fetch on a separate goroutine and call render from
// there once the response is accepted.
//
// Classification and render happen under one lock, as do acceptance and
// render of a fetched response, so a response accepted for an older prefix
// can never be drawn over the list of a newer keystroke. render must not
// call Keyup.
func (c *Coordinator) Keyup(ctx context.Context, prefix string, render func([]string)) Step {
	c.renderMu.Lock()
	step, data := c.Begin(prefix)
	if step == StepHit {
		render(data)
	}
	c.renderMu.Unlock()

	if step == StepMiss {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			resp := c.Fetch(ctx, prefix)

			c.renderMu.Lock()
			defer c.renderMu.Unlock()
			if data, ok := c.Complete(resp); ok {
				render(data)
			}
		}()
	}
	return step
}

// Wait blocks until every fetch started by Keyup has been applied.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Cache returns the cache backing the coordinator.
func (c *Coordinator) Cache() Cache {
	return c.cache
}
