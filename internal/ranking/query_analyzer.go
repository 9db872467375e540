package ranking

import (
	"regexp"
	"strings"
	"unicode"
)

var phraseRegex = regexp.MustCompile(`"([^"]+)"`)

// Analyze parses a query into its literal form, quoted phrases and terms.
func Analyze(query string) *AnalyzedQuery {
	result := &AnalyzedQuery{
		Original: query,
		Literal:  strings.ToLower(strings.TrimSpace(strings.ReplaceAll(query, `"`, ""))),
		Terms:    []string{},
		Phrases:  []string{},
	}
	for _, match := range phraseRegex.FindAllStringSubmatch(query, -1) {
		if phrase := strings.TrimSpace(match[1]); phrase != "" {
			result.Phrases = append(result.Phrases, strings.ToLower(phrase))
		}
	}
	remaining := phraseRegex.ReplaceAllString(query, " ")
	seen := make(map[string]bool)
	for _, word := range strings.Fields(remaining) {
		if t := normalizeToken(word); t != "" && !seen[t] {
			result.Terms = append(result.Terms, t)
			seen[t] = true
		}
	}
	return result
}

// normalizeToken lowercases a token and trims punctuation from its edges,
// keeping inner hyphens and underscores.
func normalizeToken(token string) string {
	return strings.TrimFunc(strings.ToLower(token), func(r rune) bool {
		return unicode.IsPunct(r) && r != '-' && r != '_'
	})
}

// AllTermsMatch checks if all query terms are found in the given text.
func AllTermsMatch(terms []string, text string) bool {
	if len(terms) == 0 {
		return false
	}
	textLower := strings.ToLower(text)
	for _, term := range terms {
		if !strings.Contains(textLower, term) {
			return false
		}
	}
	return true
}

// CountMatchingTerms counts how many query terms are found in the text.
func CountMatchingTerms(terms []string, text string) int {
	count := 0
	textLower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(textLower, term) {
			count++
		}
	}
	return count
}

// Classify determines how well text matches q.
func Classify(q *AnalyzedQuery, text string) MatchType {
	textLower := strings.ToLower(text)
	if q.Literal != "" && strings.Contains(textLower, q.Literal) {
		return MatchTypePhrase
	}
	for _, phrase := range q.Phrases {
		if strings.Contains(textLower, phrase) {
			return MatchTypePhrase
		}
	}
	terms := append([]string(nil), q.Terms...)
	for _, phrase := range q.Phrases {
		terms = append(terms, strings.Fields(phrase)...)
	}
	switch n := CountMatchingTerms(terms, text); {
	case n == 0:
		return MatchTypeNone
	case n == len(terms):
		return MatchTypeAllWords
	default:
		return MatchTypePartial
	}
}
