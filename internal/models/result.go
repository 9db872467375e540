package models

// SearchResult is one match record pointing at a content item plus the text
// surrounding the match.
type SearchResult struct {
	SectionID     string  `json:"section_id"`
	SectionTitle  string  `json:"section_title"`
	ContentIndex  int     `json:"content_index"`
	MatchText     string  `json:"match_text"`
	ContextBefore string  `json:"context_before"`
	ContextAfter  string  `json:"context_after"`
	Score         float64 `json:"score,omitempty"`
}

// Fragment is a piece of display text, tagged when it matched the highlighted term.
type Fragment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string         `json:"query"`
	Mode      SearchMode     `json:"mode"`
	Results   []SearchResult `json:"results"`
	Total     int            `json:"total"`
	QueryTime int64          `json:"query_time_ms"`
	// Suggestion is a corrected query offered when nothing matched.
	Suggestion string `json:"suggestion,omitempty"`
}
