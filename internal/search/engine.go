package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcd-community/handbook/internal/config"
	"github.com/mcd-community/handbook/internal/keyword"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/ranking"
	"go.uber.org/zap"
)

// ErrRankedUnavailable is returned for ranked queries when no keyword index is configured.
var ErrRankedUnavailable = errors.New("ranked search is not available")

// SectionSource supplies the current handbook sections.
type SectionSource interface {
	Sections() []models.Section
}

// Engine answers search queries against the current handbook content.
type Engine struct {
	source       SectionSource
	keywordIndex keyword.KeywordIndex
	spell        *keyword.SpellChecker
	ranker       *ranking.Ranker
	config       *config.SearchConfig
	logger       *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithSpellChecker enables "did you mean" suggestions for queries without results.
func WithSpellChecker(sc *keyword.SpellChecker) EngineOption {
	return func(e *Engine) { e.spell = sc }
}

// NewEngine creates a search engine. keywordIndex may be nil, in which case
// only substring search is available.
func NewEngine(source SectionSource, keywordIndex keyword.KeywordIndex, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		source:       source,
		keywordIndex: keywordIndex,
		config:       cfg,
		logger:       zap.NewNop(),
	}
	if cfg.RankingEnabledOrDefault() {
		e.ranker = ranking.NewRanker(nil)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sections returns the sections the engine searches.
func (e *Engine) Sections() []models.Section {
	return e.source.Sections()
}

// Search runs query in its mode and returns the results with timing.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if query.Mode == "" {
		query.Mode = models.SearchMode(e.config.DefaultMode)
	}
	if err := query.Validate(e.config.MaxLimit); err != nil {
		return nil, err
	}

	var results []models.SearchResult
	switch query.Mode {
	case models.ModeRanked:
		r, err := e.searchRanked(ctx, query)
		if err != nil {
			return nil, err
		}
		results = r
	default:
		results = SearchWindow(e.source.Sections(), query.Query, e.config.ContextChars)
	}

	total := len(results)
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	resp := &models.SearchResponse{
		Query:     query.Query,
		Mode:      query.Mode,
		Results:   results,
		Total:     total,
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	if total == 0 && e.spell != nil {
		resp.Suggestion = e.spell.SuggestQuery(query.Query)
	}
	e.logger.Debug("search",
		zap.String("query", query.Query),
		zap.String("mode", string(query.Mode)),
		zap.Int("total", total),
	)
	return resp, nil
}

func (e *Engine) searchRanked(ctx context.Context, query *models.SearchQuery) ([]models.SearchResult, error) {
	if e.keywordIndex == nil {
		return nil, ErrRankedUnavailable
	}
	limit := query.Limit
	if limit == 0 {
		limit = e.config.DefaultLimit
	}
	hits, err := e.keywordIndex.Search(ctx, query.Query, limit, &keyword.SearchOptions{
		TitleBoost:   e.config.TitleBoost,
		FuzzyEnabled: query.Fuzzy,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	byID := make(map[string]models.Section)
	for _, s := range e.source.Sections() {
		byID[s.ID] = s
	}
	candidates := make([]ranking.Candidate, 0, len(hits))
	for _, hit := range hits {
		section, ok := byID[hit.SectionID]
		// the index may briefly lag a content reload
		if !ok || hit.ContentIndex < 0 || hit.ContentIndex >= len(section.Content) {
			continue
		}
		item := section.Content[hit.ContentIndex]
		text, ok := models.SearchableText(item)
		if !ok {
			continue
		}
		r, ok := matchText(text, query.Query, e.config.ContextChars)
		if !ok {
			r = leadingContext(text, e.config.ContextChars)
		}
		r.SectionID = section.ID
		r.SectionTitle = section.Title
		r.ContentIndex = hit.ContentIndex
		r.Score = hit.Score
		_, heading := item.(models.Heading)
		candidates = append(candidates, ranking.Candidate{Result: r, Text: text, Heading: heading})
	}
	if e.ranker != nil {
		return e.ranker.Rank(query.Query, candidates), nil
	}
	results := make([]models.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.Result
	}
	return results, nil
}

// Reindex rebuilds the keyword index from the current sections.
func (e *Engine) Reindex(ctx context.Context) error {
	if e.keywordIndex == nil {
		return nil
	}
	if err := e.keywordIndex.Rebuild(ctx, e.source.Sections()); err != nil {
		return fmt.Errorf("failed to rebuild keyword index: %w", err)
	}
	if e.spell != nil {
		e.spell.Invalidate()
	}
	return nil
}

// IndexedItems returns the number of content items in the keyword index.
func (e *Engine) IndexedItems() uint64 {
	if e.keywordIndex == nil {
		return 0
	}
	n, err := e.keywordIndex.DocCount()
	if err != nil {
		return 0
	}
	return n
}
