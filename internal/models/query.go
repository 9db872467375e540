package models

import "fmt"

// SearchMode selects the matching strategy.
type SearchMode string

const (
	// ModeSubstring is case-insensitive literal containment, one result per item, document order.
	ModeSubstring SearchMode = "substring"
	// ModeRanked is token search over the keyword index, ordered by relevance.
	ModeRanked SearchMode = "ranked"
)

// SearchQuery is a search request.
type SearchQuery struct {
	Query string     `json:"query"`
	Mode  SearchMode `json:"mode,omitempty"`
	Fuzzy bool       `json:"fuzzy,omitempty"` // ranked mode only
	Limit int        `json:"limit,omitempty"` // 0 = no limit in substring mode
}

// Validate normalizes the query. An empty query is valid and yields no results;
// only an unknown mode or a negative limit is rejected.
func (q *SearchQuery) Validate(maxLimit int) error {
	switch q.Mode {
	case "":
		q.Mode = ModeSubstring
	case ModeSubstring, ModeRanked:
	default:
		return fmt.Errorf("unknown search mode %q", q.Mode)
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}
