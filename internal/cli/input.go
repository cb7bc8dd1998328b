// Package cli handles line-mode input for debugging the suggestion flow without a terminal UI.
package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/usersuggest/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var itemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads one prefix per line and prints what the widget would
// render for it. Each line counts as one keystroke.
type InputHandler struct {
	coord        *suggest.Coordinator
	reader       *bufio.Reader
	out          *log.Logger
	prompt       string
	requestCount int
}

// NewInputHandler wires a coordinator to in and out.
func NewInputHandler(coord *suggest.Coordinator, in io.Reader, out io.Writer, prompt string) *InputHandler {
	return &InputHandler{
		coord:  coord,
		reader: bufio.NewReader(in),
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: false,
			Formatter:       log.TextFormatter,
		}),
		prompt: prompt,
	}
}

// Start runs the input loop until EOF or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("usersuggest CLI")
	h.out.Printf("type at least %d characters and press Enter (Ctrl+D to exit):", h.coord.MinPrefix())

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		h.out.Print(h.prompt)
		line, err := h.reader.ReadString('\n')
		if prefix := strings.TrimRight(line, "\r\n"); prefix != "" {
			h.handleInput(ctx, prefix)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// handleInput runs one keystroke through the coordinator, fetching
// synchronously on a miss, and prints the rendered list.
func (h *InputHandler) handleInput(ctx context.Context, prefix string) {
	h.requestCount++
	start := time.Now()

	step, data := h.coord.Begin(prefix)
	switch step {
	case suggest.StepIgnored:
		log.Debugf("Prefix too short, list left as is: '%s'", prefix)
		return
	case suggest.StepPending:
		log.Debugf("Lookup for '%s' already in flight", prefix)
		return
	case suggest.StepMiss:
		resp := h.coord.Fetch(ctx, prefix)
		if resp.Err != nil {
			h.coord.Complete(resp)
			h.out.Errorf("No suggestions for '%s': %v", prefix, resp.Err)
			return
		}
		var ok bool
		if data, ok = h.coord.Complete(resp); !ok {
			return
		}
	}

	log.Debugf("Took [ %v ] for prefix '%s' (%s)", time.Since(start), prefix, step)

	if len(data) == 0 {
		h.out.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}
	h.out.Printf("Found %d suggestions for prefix '%s':", len(data), prefix)
	for i, s := range data {
		h.out.Printf("%2d. %s", i+1, itemStyle.Render(s))
	}
}

// RequestCount returns how many non-empty lines were handled.
func (h *InputHandler) RequestCount() int {
	return h.requestCount
}
