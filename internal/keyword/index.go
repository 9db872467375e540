// Package keyword provides token search over handbook content items and
// spelling suggestions drawn from the indexed vocabulary.
package keyword

import (
	"context"

	"github.com/mcd-community/handbook/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score of matches in the owning section title.
	// Use 1.0 (or 0) for no boost.
	TitleBoost float64
	// FuzzyEnabled matches terms within Fuzziness edits for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance (1 or 2). Default 2.
	Fuzziness int
}

// KeywordIndex defines keyword search operations over content items.
type KeywordIndex interface {
	// Rebuild replaces the whole index with the searchable items of sections.
	Rebuild(ctx context.Context, sections []models.Section) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit, addressing one content item.
type KeywordResult struct {
	SectionID    string
	ContentIndex int
	Score        float64
}

// TermDictionary provides access to the term dictionary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the number of items containing the term.
	GetTermFrequency(term string) (int, error)
}
