package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/session"
)

type staticSource []models.Section

func (s staticSource) Sections() []models.Section { return s }

func testSource() staticSource {
	return staticSource{
		{ID: "verify", Title: "Verification", Content: []models.ContentItem{
			models.Text{Text: "Use the /verify command"},
			models.Callout{Text: "Verify before patrols"},
		}},
		{ID: "ranks", Title: "Ranks", Content: []models.ContentItem{
			models.Text{Text: "Directors verify promotions"},
		}},
	}
}

func typeString(t *testing.T, m tea.Model, s string) tea.Model {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(m tea.Model, k string) tea.Model {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, _ = m.Update(msg)
	return m
}

func TestModel_TypingSearches(t *testing.T) {
	var m tea.Model = New("Handbook", testSource())
	m = typeString(t, m, "verify")
	s := m.(Model).Session()
	assert.Equal(t, "verify", s.Query())
	assert.Len(t, s.Results(), 3)
	assert.Equal(t, session.Searching, s.State())
	assert.Contains(t, m.View(), "3 matches")
}

func TestModel_NavigationWraps(t *testing.T) {
	var m tea.Model = New("Handbook", testSource())
	m = typeString(t, m, "verify")
	m = key(m, "enter")

	m = key(m, "n")
	model := m.(Model)
	assert.Equal(t, 0, model.Session().Cursor())
	assert.Equal(t, "verify", model.focus.sectionID)

	m = key(m, "N")
	model = m.(Model)
	assert.Equal(t, 2, model.Session().Cursor())
	assert.Equal(t, "ranks", model.focus.sectionID)
	assert.Contains(t, m.View(), "Match 3 of 3")
}

func TestModel_EscClears(t *testing.T) {
	var m tea.Model = New("Handbook", testSource())
	m = typeString(t, m, "verify")
	m = key(m, "enter")
	m = key(m, "n")
	m = key(m, "esc")
	model := m.(Model)
	assert.Equal(t, session.Idle, model.Session().State())
	assert.True(t, model.input.Focused())
	assert.Empty(t, model.input.Value())
}

func TestModel_NoMatchesNavigationIsNoop(t *testing.T) {
	var m tea.Model = New("Handbook", testSource())
	m = typeString(t, m, "zzz")
	m = key(m, "enter")
	m = key(m, "n")
	m = key(m, "N")
	model := m.(Model)
	assert.Equal(t, session.NoCursor, model.Session().Cursor())
	assert.Contains(t, m.View(), "No matches")
}

func TestModel_Quit(t *testing.T) {
	var m tea.Model = New("Handbook", testSource())
	m = key(m, "enter")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, cursor, size int
		from, to        int
	}{
		{3, -1, 8, 0, 3},
		{20, -1, 8, 0, 8},
		{20, 10, 8, 6, 14},
		{20, 19, 8, 12, 20},
	}
	for _, tt := range tests {
		from, to := window(tt.n, tt.cursor, tt.size)
		assert.Equal(t, tt.from, from)
		assert.Equal(t, tt.to, to)
	}
}
