package search

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mcd-community/handbook/internal/models"
)

// Highlight splits text on every case-insensitive occurrence of term and tags
// the matched pieces. The term is matched literally, and a piece counts as a
// match only when its lowercase form equals the lowercase term, the same rule
// Search uses. A blank term returns the text as a single plain fragment.
func Highlight(text, term string) []models.Fragment {
	if strings.TrimSpace(term) == "" {
		return []models.Fragment{{Text: text}}
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	locs := re.FindAllStringIndex(text, -1)
	lowerTerm := lowerString(term)
	frags := make([]models.Fragment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		// (?i) also folds pairs like ſ/s that lowercasing keeps apart
		if lowerString(text[loc[0]:loc[1]]) != lowerTerm {
			continue
		}
		frags = append(frags,
			models.Fragment{Text: text[prev:loc[0]]},
			models.Fragment{Text: text[loc[0]:loc[1]], Matched: true},
		)
		prev = loc[1]
	}
	return append(frags, models.Fragment{Text: text[prev:]})
}

func lowerString(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// MatchedCount returns how many fragments are tagged as matched.
func MatchedCount(frags []models.Fragment) int {
	n := 0
	for _, f := range frags {
		if f.Matched {
			n++
		}
	}
	return n
}
