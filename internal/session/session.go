// Package session tracks a search query, its results and a navigation cursor
// for one client.
package session

import (
	"fmt"
	"strings"

	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
)

// NoCursor is the cursor value when no result is active.
const NoCursor = -1

// State is the session's position in the search lifecycle.
type State int

const (
	// Idle has no query and no results.
	Idle State = iota
	// Searching has a query and results but no active result.
	Searching
	// Navigating has an active result.
	Navigating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Navigating:
		return "navigating"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "searching":
		*s = Searching
	case "navigating":
		*s = Navigating
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// SearchFunc produces results for a query over sections.
type SearchFunc func(sections []models.Section, query string) []models.SearchResult

// SectionSource supplies the sections a session searches.
type SectionSource interface {
	Sections() []models.Section
}

// NavigateHandler is called after the cursor moves to result index i.
// Presentation layers use it to scroll the result into view or expand its section.
type NavigateHandler func(result models.SearchResult, i int)

// Session is a search session. It is not safe for concurrent use; Manager
// serializes access to the sessions it owns.
type Session struct {
	source     SectionSource
	searchFn   SearchFunc
	onNavigate NavigateHandler

	query       string
	highlighted string
	results     []models.SearchResult
	cursor      int
}

// Option configures a Session.
type Option func(*Session)

// WithSearchFunc replaces the default substring search.
func WithSearchFunc(fn SearchFunc) Option {
	return func(s *Session) { s.searchFn = fn }
}

// WithNavigateHandler registers the navigation side effect.
func WithNavigateHandler(fn NavigateHandler) Option {
	return func(s *Session) { s.onNavigate = fn }
}

// New creates an idle session over source.
func New(source SectionSource, opts ...Option) *Session {
	s := &Session{
		source:   source,
		searchFn: search.Search,
		results:  []models.SearchResult{},
		cursor:   NoCursor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery runs q against the current sections. A blank q clears the session.
func (s *Session) SetQuery(q string) {
	s.query = q
	if strings.TrimSpace(q) == "" {
		s.reset()
		return
	}
	s.results = s.searchFn(s.source.Sections(), q)
	if s.results == nil {
		s.results = []models.SearchResult{}
	}
	s.highlighted = q
	s.cursor = NoCursor
}

// ClearSearch returns the session to Idle.
func (s *Session) ClearSearch() {
	s.query = ""
	s.reset()
}

func (s *Session) reset() {
	s.results = []models.SearchResult{}
	s.highlighted = ""
	s.cursor = NoCursor
}

// NavigateToResult activates result i. Out-of-range indexes are ignored and
// return nil.
func (s *Session) NavigateToResult(i int) *models.SearchResult {
	if i < 0 || i >= len(s.results) {
		return nil
	}
	s.cursor = i
	r := s.results[i]
	if s.onNavigate != nil {
		s.onNavigate(r, i)
	}
	return &r
}

// NextResult moves to the following result, wrapping to the first.
func (s *Session) NextResult() *models.SearchResult {
	if len(s.results) == 0 {
		return nil
	}
	return s.NavigateToResult((s.cursor + 1) % len(s.results))
}

// PreviousResult moves to the preceding result, wrapping to the last.
func (s *Session) PreviousResult() *models.SearchResult {
	if len(s.results) == 0 {
		return nil
	}
	if s.cursor <= 0 {
		return s.NavigateToResult(len(s.results) - 1)
	}
	return s.NavigateToResult(s.cursor - 1)
}

// Query returns the query as last set.
func (s *Session) Query() string { return s.query }

// HighlightedTerm returns the term to highlight, empty when idle.
func (s *Session) HighlightedTerm() string { return s.highlighted }

// Results returns the current results. Callers must not modify the slice.
func (s *Session) Results() []models.SearchResult { return s.results }

// Cursor returns the active result index or NoCursor.
func (s *Session) Cursor() int { return s.cursor }

// Active returns the active result, or nil.
func (s *Session) Active() *models.SearchResult {
	if s.cursor == NoCursor {
		return nil
	}
	r := s.results[s.cursor]
	return &r
}

// State reports the lifecycle state.
func (s *Session) State() State {
	switch {
	case strings.TrimSpace(s.query) == "":
		return Idle
	case s.cursor != NoCursor:
		return Navigating
	default:
		return Searching
	}
}
