package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// stubFetcher answers from a fixed table and counts calls per prefix.
type stubFetcher struct {
	answers map[string][]string
	err     error
	gate    chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func newStubFetcher(answers map[string][]string) *stubFetcher {
	return &stubFetcher{answers: answers, calls: make(map[string]int)}
}

func (s *stubFetcher) Fetch(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	s.calls[prefix]++
	s.mu.Unlock()

	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.answers[prefix], nil
}

func (s *stubFetcher) count(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[prefix]
}

func (s *stubFetcher) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func TestBeginShortPrefixIsIgnored(t *testing.T) {
	fetcher := newStubFetcher(nil)
	cache := NewMemoryCache()
	c := NewCoordinator(cache, fetcher)

	for _, p := range []string{"", "a", "ab", "é", "日本"} {
		step, data := c.Begin(p)
		assert.Equal(t, StepIgnored, step, "prefix %q", p)
		assert.Nil(t, data)
	}
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 0, fetcher.total())
}

func TestMinPrefixCountsRunes(t *testing.T) {
	c := NewCoordinator(nil, newStubFetcher(nil))
	step, _ := c.Begin("日本語")
	assert.Equal(t, StepMiss, step)
}

func TestWithMinPrefix(t *testing.T) {
	c := NewCoordinator(nil, newStubFetcher(nil), WithMinPrefix(1))
	assert.Equal(t, 1, c.MinPrefix())
	step, _ := c.Begin("a")
	assert.Equal(t, StepMiss, step)

	c = NewCoordinator(nil, newStubFetcher(nil), WithMinPrefix(0))
	assert.Equal(t, DefaultMinPrefix, c.MinPrefix())
}

func TestMissFetchesOnceAndCaches(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{"abc": {"abcdef", "abcxyz"}})
	cache := NewMemoryCache()
	c := NewCoordinator(cache, fetcher)

	step, _ := c.Begin("abc")
	require.Equal(t, StepMiss, step)

	data, ok := c.Complete(c.Fetch(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, []string{"abcdef", "abcxyz"}, data)
	assert.Equal(t, 1, fetcher.count("abc"))

	cached, hit := cache.Get("abc")
	require.True(t, hit)
	assert.Equal(t, []string{"abcdef", "abcxyz"}, cached)

	step, data = c.Begin("abc")
	assert.Equal(t, StepHit, step)
	assert.Equal(t, []string{"abcdef", "abcxyz"}, data)
	assert.Equal(t, 1, fetcher.count("abc"))

	st := c.Stats()
	assert.Equal(t, 1, st.Hits)
	assert.Equal(t, 1, st.Misses)
	assert.Equal(t, 1, st.Fetches)
}

func TestCacheKeyIsLiteralPrefix(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{"abc": {"abcdef"}, "ABC": {"ABCD"}})
	c := NewCoordinator(nil, fetcher)

	for _, p := range []string{"abc", "ABC", "abc "} {
		step, _ := c.Begin(p)
		require.Equal(t, StepMiss, step, "prefix %q", p)
		c.Complete(c.Fetch(context.Background(), p))
	}
	assert.Equal(t, 3, c.Cache().Len())
}

func TestEmptyResultIsCached(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{"zzz": {}})
	c := NewCoordinator(nil, fetcher)

	c.Begin("zzz")
	data, ok := c.Complete(c.Fetch(context.Background(), "zzz"))
	require.True(t, ok)
	assert.Empty(t, data)

	step, _ := c.Begin("zzz")
	assert.Equal(t, StepHit, step)
	assert.Equal(t, 1, fetcher.count("zzz"))
}

func TestFailedFetchIsNotCachedAndRetried(t *testing.T) {
	boom := errors.New("connection refused")
	fetcher := newStubFetcher(nil)
	fetcher.err = boom
	c := NewCoordinator(nil, fetcher)

	c.Begin("abc")
	resp := c.Fetch(context.Background(), "abc")
	require.ErrorIs(t, resp.Err, boom)

	data, ok := c.Complete(resp)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, 0, c.Cache().Len())
	assert.Equal(t, 1, c.Stats().Failures)

	step, _ := c.Begin("abc")
	assert.Equal(t, StepMiss, step, "a failed prefix must be fetchable again")
}

func TestPendingPrefixIsNotFetchedTwice(t *testing.T) {
	c := NewCoordinator(nil, newStubFetcher(nil))

	step, _ := c.Begin("abc")
	require.Equal(t, StepMiss, step)
	step, _ = c.Begin("abcd")
	require.Equal(t, StepMiss, step)
	step, _ = c.Begin("abc")
	assert.Equal(t, StepPending, step)
}

func TestStaleResponseIsCachedButNotRendered(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{
		"abc":  {"abcdef", "abcxyz"},
		"abcd": {"abcdef"},
	})
	c := NewCoordinator(nil, fetcher)

	c.Begin("abc")
	c.Begin("abcd")

	// "abc" answers late, after the user typed "abcd".
	_, ok := c.Complete(c.Fetch(context.Background(), "abc"))
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Stale)

	cached, hit := c.Cache().Get("abc")
	require.True(t, hit)
	assert.Equal(t, []string{"abcdef", "abcxyz"}, cached)

	data, ok := c.Complete(c.Fetch(context.Background(), "abcd"))
	assert.True(t, ok)
	assert.Equal(t, []string{"abcdef"}, data)
}

func TestShortPrefixMakesPendingResponseStale(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{"abc": {"abcdef"}})
	c := NewCoordinator(nil, fetcher)

	c.Begin("abc")
	step, _ := c.Begin("ab")
	require.Equal(t, StepIgnored, step)

	_, ok := c.Complete(c.Fetch(context.Background(), "abc"))
	assert.False(t, ok)
}

func TestKeyupRendersHitSynchronously(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("abc", []string{"abcdef"})
	fetcher := newStubFetcher(nil)
	c := NewCoordinator(cache, fetcher)

	var got []string
	step := c.Keyup(context.Background(), "abc", func(s []string) { got = s })
	assert.Equal(t, StepHit, step)
	assert.Equal(t, []string{"abcdef"}, got)
	assert.Equal(t, 0, fetcher.total())
}

func TestKeyupRendersMissAfterFetch(t *testing.T) {
	fetcher := newStubFetcher(map[string][]string{"abc": {"abcdef", "abcxyz"}})
	fetcher.gate = make(chan struct{})
	c := NewCoordinator(nil, fetcher)

	rendered := make(chan []string, 1)
	step := c.Keyup(context.Background(), "abc", func(s []string) { rendered <- s })
	assert.Equal(t, StepMiss, step)

	close(fetcher.gate)
	c.Wait()

	select {
	case got := <-rendered:
		assert.Equal(t, []string{"abcdef", "abcxyz"}, got)
	default:
		t.Fatal("expected render after fetch")
	}
}

func TestCacheSharedBetweenCoordinators(t *testing.T) {
	cache := NewMemoryCache()
	fetcher := newStubFetcher(map[string][]string{"abc": {"abcdef"}})
	first := NewCoordinator(cache, fetcher)
	second := NewCoordinator(cache, fetcher)

	first.Begin("abc")
	first.Complete(first.Fetch(context.Background(), "abc"))

	step, data := second.Begin("abc")
	assert.Equal(t, StepHit, step)
	assert.Equal(t, []string{"abcdef"}, data)
	assert.Equal(t, 1, fetcher.count("abc"))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "ignored", StepIgnored.String())
	assert.Equal(t, "hit", StepHit.String())
	assert.Equal(t, "miss", StepMiss.String())
	assert.Equal(t, "pending", StepPending.String())
	assert.Equal(t, "step(9)", Step(9).String())
}

func TestKeyupOlderResponseCannotOverwriteNewerHit(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("abcd", []string{"abcdef"})
	fetcher := newStubFetcher(map[string][]string{"abc": {"abc-old"}})
	c := NewCoordinator(cache, fetcher)
	list := NewMemoryList()

	entered := make(chan struct{})
	release := make(chan struct{})
	slowRender := func(s []string) {
		close(entered)
		<-release
		Render(list, s)
	}

	require.Equal(t, StepMiss, c.Keyup(context.Background(), "abc", slowRender))
	<-entered

	// the user types "abcd" while the "abc" answer is being drawn
	hit := make(chan Step, 1)
	go func() {
		hit <- c.Keyup(context.Background(), "abcd", func(s []string) { Render(list, s) })
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Equal(t, StepHit, <-hit)
	c.Wait()
	assert.Equal(t, []string{"abcdef"}, list.Items())
}

func TestKeyupHitBetweenFetchAndCompleteWins(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("abcd", []string{"abcdef"})
	fetcher := newStubFetcher(map[string][]string{"abc": {"abc-old"}})
	fetcher.gate = make(chan struct{})
	c := NewCoordinator(cache, fetcher)
	list := NewMemoryList()
	render := func(s []string) { Render(list, s) }

	require.Equal(t, StepMiss, c.Keyup(context.Background(), "abc", render))
	require.Equal(t, StepHit, c.Keyup(context.Background(), "abcd", render))
	close(fetcher.gate)
	c.Wait()

	assert.Equal(t, []string{"abcdef"}, list.Items())
	assert.Equal(t, 1, c.Stats().Stale)
}

func TestNilFetcherFailsMisses(t *testing.T) {
	c := NewCoordinator(nil, nil)

	step, _ := c.Begin("abc")
	require.Equal(t, StepMiss, step)
	resp := c.Fetch(context.Background(), "abc")
	assert.ErrorIs(t, resp.Err, ErrNoFetcher)

	_, ok := c.Complete(resp)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Cache().Len())
}
