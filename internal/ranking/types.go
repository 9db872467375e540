// Package ranking re-orders ranked search hits by how well each content item
// matches the query as typed.
package ranking

import "github.com/mcd-community/handbook/internal/models"

// MatchType represents the type of query match found.
type MatchType int

const (
	// MatchTypeNone indicates no query term occurs literally (fuzzy hits).
	MatchTypeNone MatchType = iota
	// MatchTypePartial indicates some query terms matched.
	MatchTypePartial
	// MatchTypeAllWords indicates all query words matched but not as a phrase.
	MatchTypeAllWords
	// MatchTypePhrase indicates the query or one of its quoted phrases occurs verbatim.
	MatchTypePhrase
)

// String returns a string representation of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchTypeNone:
		return "none"
	case MatchTypePartial:
		return "partial"
	case MatchTypeAllWords:
		return "all_words"
	case MatchTypePhrase:
		return "phrase"
	default:
		return "unknown"
	}
}

// AnalyzedQuery holds the parsed form of a search query.
type AnalyzedQuery struct {
	// Original is the query as typed.
	Original string
	// Literal is the lowercased query with quotes removed.
	Literal string
	// Terms are the normalized tokens outside quotes.
	Terms []string
	// Phrases are lowercased quoted phrases.
	Phrases []string
}

// Candidate is a keyword hit waiting to be re-ranked.
type Candidate struct {
	Result models.SearchResult
	// Text is the searchable text of the content item.
	Text string
	// Heading marks items that are section headings.
	Heading bool
}

// Config holds ranking multipliers.
type Config struct {
	PhraseMultiplier   float64
	AllWordsMultiplier float64
	PartialMultiplier  float64
	NoMatchMultiplier  float64
	HeadingMultiplier  float64
}

// DefaultConfig returns the default multipliers.
func DefaultConfig() *Config {
	return &Config{
		PhraseMultiplier:   1.3,
		AllWordsMultiplier: 1.0,
		PartialMultiplier:  0.7,
		NoMatchMultiplier:  0.5,
		HeadingMultiplier:  1.2,
	}
}
