// Package tui renders the suggestion widget in a terminal: a text input with
// a list of clickable suggestions below it.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/bastiangx/usersuggest/pkg/suggest"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listTop is the screen row of the first suggestion: title, then input.
const listTop = 2

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	emptyStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// SuggestionsMsg delivers a finished fetch to the event loop.
type SuggestionsMsg struct {
	Response suggest.Response
}

// Model is the Bubble Tea model of one suggestion widget.
// All list and input mutation happens inside Update.
type Model struct {
	ctx    context.Context
	coord  *suggest.Coordinator
	input  textinput.Model
	list   *suggest.MemoryList
	status string
	err    error
	width  int
	done   bool
}

// NewModel creates a focused widget driven by coord.
func NewModel(ctx context.Context, coord *suggest.Coordinator) Model {
	ti := textinput.New()
	ti.Placeholder = "username"
	ti.Prompt = "› "
	ti.Focus()

	return Model{
		ctx:   ctx,
		coord: coord,
		input: ti,
		list:  suggest.NewMemoryList(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		}
		var inputCmd, fetchCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		m, fetchCmd = m.keyup()
		return m, tea.Batch(inputCmd, fetchCmd)

	case SuggestionsMsg:
		return m.applyResponse(msg.Response), nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.activate(msg.Y - listTop)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 4 {
			m.input.Width = msg.Width - 4
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// keyup runs the coordinator on the current input value.
func (m Model) keyup() (Model, tea.Cmd) {
	prefix := m.input.Value()
	step, data := m.coord.Begin(prefix)

	switch step {
	case suggest.StepHit:
		suggest.Render(m.list, data)
		m.status, m.err = fmt.Sprintf("%d cached", len(data)), nil
	case suggest.StepMiss:
		m.status = "looking up " + prefix + "…"
		coord, ctx := m.coord, m.ctx
		return m, func() tea.Msg {
			return SuggestionsMsg{Response: coord.Fetch(ctx, prefix)}
		}
	case suggest.StepPending:
		m.status = "looking up " + prefix + "…"
	}
	return m, nil
}

func (m Model) applyResponse(resp suggest.Response) Model {
	data, ok := m.coord.Complete(resp)
	if resp.Err != nil {
		m.err = resp.Err
		m.status = ""
		return m
	}
	if !ok {
		return m
	}
	suggest.Render(m.list, data)
	m.status, m.err = fmt.Sprintf("%d found", len(data)), nil
	return m
}

// activate picks the i-th suggestion. Clicks outside the list are ignored.
func (m *Model) activate(i int) {
	items := m.list.Items()
	if i < 0 || i >= len(items) {
		return
	}
	suggest.Activate(m.list, textInput{&m.input}, items[i])
	m.input.CursorEnd()
	m.status = ""
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("User suggest"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	items := m.list.Items()
	for _, item := range items {
		b.WriteString("  " + itemStyle.Render(item) + "\n")
	}
	if len(items) == 0 && m.list.Empty() {
		b.WriteString(emptyStyle.Render("  no suggestions") + "\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("  " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render("  " + m.status))
	default:
		b.WriteString(statusStyle.Render("  click a suggestion to use it · esc to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// Value returns the current text of the input.
func (m Model) Value() string {
	return m.input.Value()
}

// Items returns the rendered suggestions.
func (m Model) Items() []string {
	return m.list.Items()
}

// textInput lets suggest.Activate write into a bubbles text input.
type textInput struct {
	m *textinput.Model
}

func (t textInput) Value() string      { return t.m.Value() }
func (t textInput) SetValue(v string) { t.m.SetValue(v) }
