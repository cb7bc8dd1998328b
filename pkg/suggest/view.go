package suggest

import (
	"errors"
	"sync"
)

// ErrIndexOutOfRange is returned when activating an item that is not rendered.
var ErrIndexOutOfRange = errors.New("suggestion index out of range")

// Render replaces the contents of list with suggestions, in order.
// An empty slice leaves the list cleared and flagged empty.
func Render(list List, suggestions []string) {
	list.Clear()
	list.SetEmpty(len(suggestions) == 0)
	for _, s := range suggestions {
		list.Append(s)
	}
}

// Activate copies text into input and empties the list it was picked from.
func Activate(list List, input Input, text string) {
	list.Clear()
	list.SetEmpty(true)
	input.SetValue(text)
}

// MemoryList is a List kept in memory. Safe for concurrent use.
type MemoryList struct {
	items []string
	empty bool
	mu    sync.RWMutex
}

// NewMemoryList returns a list with no items. It starts without the empty
// flag, like a container nothing was rendered into yet.
func NewMemoryList() *MemoryList {
	return &MemoryList{}
}

func (l *MemoryList) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

func (l *MemoryList) SetEmpty(empty bool) {
	l.mu.Lock()
	l.empty = empty
	l.mu.Unlock()
}

func (l *MemoryList) Append(item string) {
	l.mu.Lock()
	l.items = append(l.items, item)
	l.mu.Unlock()
}

func (l *MemoryList) Items() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneStrings(l.items)
}

func (l *MemoryList) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.empty
}

// MemoryInput is an Input kept in memory. Safe for concurrent use.
type MemoryInput struct {
	value string
	mu    sync.RWMutex
}

func NewMemoryInput(value string) *MemoryInput {
	return &MemoryInput{value: value}
}

func (in *MemoryInput) Value() string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.value
}

func (in *MemoryInput) SetValue(v string) {
	in.mu.Lock()
	in.value = v
	in.mu.Unlock()
}
