package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Suggestion is a dictionary term close to a query term.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellChecker suggests corrections for query terms missing from the index.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	maxSuggestions int

	mu      sync.RWMutex
	terms   []string
	termSet map[string]struct{}
	loaded  bool
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		maxSuggestions: 3,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the cached vocabulary; it is reloaded on next use.
// Call after the index is rebuilt.
func (s *SpellChecker) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func (s *SpellChecker) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}
	s.mu.Lock()
	s.terms = terms
	s.termSet = set
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Suggest returns dictionary terms within the edit distance of term, best first.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	if err := s.ensureLoaded(); err != nil {
		return nil
	}
	term = strings.ToLower(term)
	s.mu.RLock()
	terms := s.terms
	s.mu.RUnlock()

	var out []Suggestion
	for _, candidate := range terms {
		if candidate == term {
			continue
		}
		diff := len([]rune(candidate)) - len([]rune(term))
		if diff > s.maxDistance || -diff > s.maxDistance {
			continue
		}
		d := LevenshteinDistance(term, candidate)
		if d > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(candidate)
		if err != nil || freq < 1 {
			continue
		}
		out = append(out, Suggestion{
			Term:      candidate,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// SuggestQuery returns the query with every unknown term replaced by its best
// suggestion, or "" when nothing was corrected.
func (s *SpellChecker) SuggestQuery(query string) string {
	if err := s.ensureLoaded(); err != nil {
		return ""
	}
	terms := tokenizeQuery(query)
	corrected := make([]string, 0, len(terms))
	changed := false
	for _, term := range terms {
		s.mu.RLock()
		_, known := s.termSet[term]
		s.mu.RUnlock()
		if known {
			corrected = append(corrected, term)
			continue
		}
		if sug := s.Suggest(term); len(sug) > 0 {
			corrected = append(corrected, sug[0].Term)
			changed = true
			continue
		}
		corrected = append(corrected, term)
	}
	if !changed {
		return ""
	}
	return strings.Join(corrected, " ")
}
