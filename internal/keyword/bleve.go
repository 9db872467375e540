package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/mcd-community/handbook/internal/models"
)

// BleveIndex implements KeywordIndex using Bleve. Each searchable content item
// is one document with id "<section id>#<content index>".
type BleveIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

type itemDoc struct {
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title"`
	Kind         string `json:"kind"`
	Text         string `json:"text"`
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so "verify" does not match "verification".
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("section_title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("section_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("kind", keywordFieldMapping)
	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path gives an
// in-memory index. The index is meant to be filled with Rebuild after opening.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := newMapping()
	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Rebuild drops every indexed item and indexes the searchable items of sections
// in a single batch.
func (b *BleveIndex) Rebuild(ctx context.Context, sections []models.Section) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.allIDs()
	if err != nil {
		return err
	}
	batch := b.index.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, item := range s.Content {
			text, ok := models.SearchableText(item)
			if !ok || strings.TrimSpace(text) == "" {
				continue
			}
			doc := itemDoc{
				SectionID:    s.ID,
				SectionTitle: s.Title,
				Kind:         string(item.Kind()),
				Text:         text,
			}
			if err := batch.Index(docID(s.ID, i), doc); err != nil {
				return fmt.Errorf("failed to index %s item %d: %w", s.ID, i, err)
			}
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

func (b *BleveIndex) allIDs() ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get doc count: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve match-all failed: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Search runs a match (or fuzzy) query over item text. Matches in the section
// title only raise the score of items whose text already matched.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	titleBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 2
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}
	if limit <= 0 {
		limit = 10
	}

	textQuery := buildQuery(query, "text", fuzzyEnabled, fuzziness)
	titleQuery := buildQuery(query, "section_title", fuzzyEnabled, fuzziness)
	if bq, ok := titleQuery.(blevequery.BoostableQuery); ok {
		bq.SetBoost(titleBoost)
	}
	q := bleve.NewBooleanQuery()
	q.AddMust(textQuery)
	q.AddShould(titleQuery)

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	b.mu.RLock()
	results, err := b.index.SearchInContext(ctx, req)
	b.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		sectionID, idx, ok := parseDocID(hit.ID)
		if !ok {
			continue
		}
		out = append(out, &KeywordResult{SectionID: sectionID, ContentIndex: idx, Score: hit.Score})
	}
	return out, nil
}

// buildQuery creates a match query, or a disjunction of fuzzy queries (one per
// term) when fuzzy matching is enabled.
func buildQuery(queryStr, field string, fuzzy bool, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}
	if len(terms) == 1 {
		fq := bleve.NewFuzzyQuery(terms[0])
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		return fq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func docID(sectionID string, contentIndex int) string {
	return sectionID + "#" + strconv.Itoa(contentIndex)
}

func parseDocID(id string) (string, int, bool) {
	i := strings.LastIndex(id, "#")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, false
	}
	return id[:i], n, true
}

// DocCount returns the number of indexed content items.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// GetAllTerms returns every term of the text field dictionary.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dict, err := b.index.FieldDict("text")
	if err != nil {
		return nil, fmt.Errorf("failed to open term dictionary: %w", err)
	}
	defer dict.Close()
	var terms []string
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		terms = append(terms, entry.Term)
	}
	return terms, nil
}

// GetTermFrequency returns the number of items whose text contains term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	tq := bleve.NewTermQuery(strings.ToLower(term))
	tq.SetField("text")
	req := bleve.NewSearchRequestOptions(tq, 0, 0, false)
	b.mu.RLock()
	res, err := b.index.Search(req)
	b.mu.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(res.Total), nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
