package ranking

import (
	"sort"

	"github.com/mcd-community/handbook/internal/models"
)

// Ranker applies match-quality multipliers to keyword scores.
type Ranker struct {
	config *Config
}

// NewRanker creates a ranker. A nil config uses DefaultConfig.
func NewRanker(config *Config) *Ranker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Ranker{config: config}
}

// Multiplier returns the score multiplier for a match type.
func (r *Ranker) Multiplier(m MatchType) float64 {
	switch m {
	case MatchTypePhrase:
		return r.config.PhraseMultiplier
	case MatchTypeAllWords:
		return r.config.AllWordsMultiplier
	case MatchTypePartial:
		return r.config.PartialMultiplier
	default:
		return r.config.NoMatchMultiplier
	}
}

// Rank rescores candidates against query and returns their results ordered by
// descending score. Ties keep their incoming order.
func (r *Ranker) Rank(query string, candidates []Candidate) []models.SearchResult {
	q := Analyze(query)
	out := make([]models.SearchResult, len(candidates))
	for i, c := range candidates {
		score := c.Result.Score * r.Multiplier(Classify(q, c.Text))
		if c.Heading {
			score *= r.config.HeadingMultiplier
		}
		out[i] = c.Result
		out[i].Score = score
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
