/*
Package suggest is the client side of user suggestions: a per-prefix cache and
the coordinator that decides, on every keystroke, whether to render from cache
or to fetch from the suggestion endpoint.

# Flow

A keystroke hands the current input value to the Coordinator:

	idle -> (len < MinPrefix)  -> ignored, nothing changes on screen
	idle -> (cache hit)        -> render cached suggestions right away
	idle -> (cache miss)       -> fetch, store, render

The cache is never invalidated. Once a prefix was fetched it is served from
memory for the lifetime of the Cache value, stale or not.

# Overlapping requests

The Coordinator remembers the prefix of the most recent keystroke. A response
whose prefix is no longer the latest is still cached but not rendered, so a
slow answer for "abc" cannot overwrite the list after the user typed "abcd".
A prefix already in flight is never requested twice.

# Collaborators

Input and List stand in for the text field and the suggestion list the
suggestions are rendered into. Fetcher stands in for the remote endpoint;
HTTPFetcher talks to `GET <base>/user_suggest?prefix=<p>`.
*/
package suggest

import "context"

// Cache maps a literal prefix to the suggestions fetched for it.
type Cache interface {
	// Get returns the suggestions stored for prefix.
	Get(prefix string) ([]string, bool)

	// Put stores suggestions under prefix, replacing any previous value.
	Put(prefix string, suggestions []string)

	// Len returns the number of cached prefixes.
	Len() int
}

// Fetcher retrieves suggestions for a prefix from the remote endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, prefix string) ([]string, error)
}

// Input is the text field a widget reads prefixes from.
type Input interface {
	Value() string
	SetValue(v string)
}

// List is the container suggestions are rendered into.
type List interface {
	// Clear removes every item.
	Clear()

	// SetEmpty toggles the "empty" state flag of the container.
	SetEmpty(empty bool)

	// Append adds one suggestion item at the end.
	Append(item string)

	Items() []string
	Empty() bool
}
