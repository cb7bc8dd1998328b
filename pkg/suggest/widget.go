package suggest

import (
	"context"
	"fmt"
	"sync"
)

// Widget ties one Input and its sibling List to a Coordinator.
type Widget struct {
	input Input
	list  List
	coord *Coordinator

	// renders are applied one at a time so a full Render is never interleaved
	renderMu sync.Mutex
}

func NewWidget(input Input, list List, coord *Coordinator) *Widget {
	return &Widget{
		input: input,
		list:  list,
		coord: coord,
	}
}

// HandleKeyup reacts to a keystroke in the input.
func (w *Widget) HandleKeyup(ctx context.Context) Step {
	return w.coord.Keyup(ctx, w.input.Value(), w.render)
}

// Activate picks the i-th rendered suggestion.
func (w *Widget) Activate(i int) error {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	items := w.list.Items()
	if i < 0 || i >= len(items) {
		return fmt.Errorf("activate %d of %d: %w", i, len(items), ErrIndexOutOfRange)
	}
	Activate(w.list, w.input, items[i])
	return nil
}

// Wait blocks until in-flight fetches started by HandleKeyup are rendered or dropped.
func (w *Widget) Wait() {
	w.coord.Wait()
}

func (w *Widget) render(suggestions []string) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()
	Render(w.list, suggestions)
}
