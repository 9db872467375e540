// Package tui implements the interactive terminal search browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/internal/session"
)

const visibleResults = 8

// focus records the result the session last navigated to. It is shared by
// every copy of the Model so the navigate handler can update it.
type focus struct {
	sectionID string
	index     int
}

// Model is the bubbletea model of the search browser.
type Model struct {
	session *session.Session
	input   textinput.Model
	focus   *focus
	styles  Styles
	width   int
	height  int
	title   string
}

// New creates a browser over the sections of source.
func New(title string, source session.SectionSource, opts ...session.Option) Model {
	f := &focus{index: session.NoCursor}
	opts = append(opts, session.WithNavigateHandler(func(r models.SearchResult, i int) {
		f.sectionID = r.SectionID
		f.index = i
	}))

	ti := textinput.New()
	ti.Placeholder = "Search the handbook..."
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	return Model{
		session: session.New(source, opts...),
		input:   ti,
		focus:   f,
		styles:  DefaultStyles(),
		width:   80,
		title:   title,
	}
}

// Session returns the browser's search session.
func (m Model) Session() *session.Session {
	return m.session
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.session.ClearSearch()
			m.input.SetValue("")
			m.input.Focus()
			m.focus.sectionID, m.focus.index = "", session.NoCursor
			return m, nil
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateNavigation(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		m.input.Blur()
		return m, nil
	case "down":
		m.session.NextResult()
		return m, nil
	case "up":
		m.session.PreviousResult()
		return m, nil
	}
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.session.SetQuery(v)
	}
	return m, cmd
}

func (m Model) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n", "j", "down":
		m.session.NextResult()
	case "N", "p", "k", "up":
		m.session.PreviousResult()
	case "g", "home":
		m.session.NavigateToResult(0)
	case "G", "end":
		m.session.NavigateToResult(len(m.session.Results()) - 1)
	case "/", "i":
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(m.status()))
	b.WriteString("\n\n")

	results := m.session.Results()
	from, to := window(len(results), m.session.Cursor(), visibleResults)
	for i := from; i < to; i++ {
		line := m.renderResult(results[i])
		if i == m.session.Cursor() {
			line = m.styles.Selected.Render(line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render(m.help()))
	return b.String()
}

func (m Model) status() string {
	s := m.session
	switch s.State() {
	case session.Idle:
		return "Type to search."
	case session.Searching:
		if len(s.Results()) == 0 {
			return fmt.Sprintf("No matches for %q.", s.Query())
		}
		return fmt.Sprintf("%d matches. Press enter then n/N to jump.", len(s.Results()))
	default:
		return fmt.Sprintf("Match %d of %d in %s", s.Cursor()+1, len(s.Results()), m.focus.sectionID)
	}
}

func (m Model) help() string {
	if m.input.Focused() {
		return "enter: browse results • ↑/↓: jump • esc: clear • ctrl+c: quit"
	}
	return "n/N: next/previous • g/G: first/last • /: edit query • esc: clear • q: quit"
}

func (m Model) renderResult(r models.SearchResult) string {
	section := m.styles.Section.Render(r.SectionTitle)
	var text strings.Builder
	for _, f := range search.Highlight(r.ContextBefore+r.MatchText+r.ContextAfter, m.session.HighlightedTerm()) {
		piece := strings.ReplaceAll(f.Text, "\n", " ")
		if f.Matched {
			text.WriteString(m.styles.Match.Render(piece))
		} else {
			text.WriteString(m.styles.Context.Render(piece))
		}
	}
	return section + "  " + text.String()
}

// window returns the slice bounds of at most size results keeping cursor visible.
func window(n, cursor, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	from := max(cursor-size/2, 0)
	to := from + size
	if to > n {
		to = n
		from = n - size
	}
	return from, to
}
