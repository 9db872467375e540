// Package search provides the handbook search engine: literal substring
// matching with context extraction, term highlighting, and a ranked mode
// backed by the keyword index.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mcd-community/handbook/internal/models"
)

// DefaultContextChars is the number of characters kept on each side of a match.
const DefaultContextChars = 50

const ellipsis = "..."

// Search returns the first match of query in every searchable content item,
// in document order. A blank query yields an empty slice. Later occurrences
// within the same item are not reported.
func Search(sections []models.Section, query string) []models.SearchResult {
	return SearchWindow(sections, query, DefaultContextChars)
}

// SearchWindow is Search with a configurable context width.
func SearchWindow(sections []models.Section, query string, window int) []models.SearchResult {
	results := []models.SearchResult{}
	if strings.TrimSpace(query) == "" {
		return results
	}
	if window < 0 {
		window = 0
	}
	for _, section := range sections {
		for i, item := range section.Content {
			text, ok := models.SearchableText(item)
			if !ok {
				continue
			}
			if r, ok := matchText(text, query, window); ok {
				r.SectionID = section.ID
				r.SectionTitle = section.Title
				r.ContentIndex = i
				results = append(results, r)
			}
		}
	}
	return results
}

// matchText locates the first case-insensitive occurrence of query in text and
// fills the match and context fields. Offsets are rune based.
func matchText(text, query string, window int) (models.SearchResult, bool) {
	start, end, ok := firstMatch(text, query)
	if !ok {
		return models.SearchResult{}, false
	}
	runes := []rune(text)
	start = clamp(start, 0, len(runes))
	end = clamp(end, start, len(runes))

	from := clamp(start-window, 0, len(runes))
	to := clamp(end+window, 0, len(runes))

	before := string(runes[from:start])
	if from > 0 {
		before = ellipsis + before
	}
	after := string(runes[end:to])
	if to < len(runes) {
		after += ellipsis
	}
	return models.SearchResult{
		MatchText:     string(runes[start:end]),
		ContextBefore: before,
		ContextAfter:  after,
	}, true
}

// firstMatch returns the rune offsets of the first case-insensitive occurrence
// of query in text. Lowercasing is done rune by rune so offsets in the
// lowered text line up with the original.
func firstMatch(text, query string) (int, int, bool) {
	lt := strings.Map(unicode.ToLower, text)
	lq := strings.Map(unicode.ToLower, query)
	i := strings.Index(lt, lq)
	if i < 0 {
		return 0, 0, false
	}
	start := utf8.RuneCountInString(lt[:i])
	return start, start + utf8.RuneCountInString(lq), true
}

// leadingContext is used for ranked hits whose text does not contain the
// literal query: the item's opening text stands in as context.
func leadingContext(text string, window int) models.SearchResult {
	runes := []rune(text)
	to := clamp(2*window, 0, len(runes))
	after := string(runes[:to])
	if to < len(runes) {
		after += ellipsis
	}
	return models.SearchResult{ContextAfter: after}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
