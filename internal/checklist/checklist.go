// Package checklist merges the onboarding checklist definition with a
// profile's saved progress.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/storage"
)

// ErrUnknownItem is returned when an item id is not part of the checklist definition.
var ErrUnknownItem = errors.New("unknown checklist item")

// DefinitionSource supplies the current checklist definition.
type DefinitionSource interface {
	Handbook() *models.Handbook
}

// CategorySummary counts completed items of one category.
type CategorySummary struct {
	Category  string `json:"category"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Service reads and updates checklist progress.
type Service struct {
	source DefinitionSource
	store  storage.ProgressStore
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a checklist service.
func NewService(source DefinitionSource, store storage.ProgressStore, opts ...Option) *Service {
	s := &Service{source: source, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) definition() []models.ChecklistItem {
	return s.source.Handbook().Checklist
}

// Checklist returns the definition with the profile's saved completion state.
// Saved items missing from the definition are ignored. A storage read failure
// is logged and treated as no saved state.
func (s *Service) Checklist(ctx context.Context, profileID string) []models.ChecklistItem {
	def := s.definition()
	out := make([]models.ChecklistItem, len(def))
	copy(out, def)
	for i := range out {
		out[i].Completed = false
	}

	saved, err := s.store.GetProgress(ctx, profileID)
	if err != nil {
		s.logger.Warn("failed to read checklist progress",
			zap.String("profile", profileID),
			zap.Error(err),
		)
		return out
	}
	done := make(map[string]bool, len(saved))
	for _, p := range saved {
		done[p.ItemID] = p.Completed
	}
	for i := range out {
		out[i].Completed = done[out[i].ID]
	}
	return out
}

func (s *Service) known(itemID string) bool {
	for _, item := range s.definition() {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

// SetCompleted marks one item for the profile.
func (s *Service) SetCompleted(ctx context.Context, profileID, itemID string, completed bool) error {
	if !s.known(itemID) {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if err := s.store.SetCompleted(ctx, profileID, itemID, completed); err != nil {
		return fmt.Errorf("failed to save checklist progress: %w", err)
	}
	return nil
}

// Reset clears all saved progress of the profile.
func (s *Service) Reset(ctx context.Context, profileID string) error {
	if err := s.store.ResetProgress(ctx, profileID); err != nil {
		return fmt.Errorf("failed to reset checklist progress: %w", err)
	}
	return nil
}

// Summary returns completion counts per category in definition order.
func Summary(items []models.ChecklistItem) []CategorySummary {
	var out []CategorySummary
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(out)
			index[item.Category] = i
			out = append(out, CategorySummary{Category: item.Category})
		}
		out[i].Total++
		if item.Completed {
			out[i].Completed++
		}
	}
	return out
}

// ImportLegacy stores progress from the JSON array the web client kept in
// local storage. Unparsable input is treated as empty and imports nothing.
// Items not in the definition are skipped. It returns the number of items imported.
func (s *Service) ImportLegacy(ctx context.Context, profileID string, data []byte) (int, error) {
	var legacy []models.ChecklistItem
	if err := json.Unmarshal(data, &legacy); err != nil {
		s.logger.Warn("ignoring unparsable legacy checklist", zap.Error(err))
		return 0, nil
	}
	completed := make(map[string]bool, len(legacy))
	for _, item := range legacy {
		if s.known(item.ID) {
			completed[item.ID] = item.Completed
		}
	}
	if len(completed) == 0 {
		return 0, nil
	}
	if err := s.store.SetMany(ctx, profileID, completed); err != nil {
		return 0, fmt.Errorf("failed to import checklist progress: %w", err)
	}
	return len(completed), nil
}

// ExportLegacy returns the profile's checklist as the local-storage JSON array.
func (s *Service) ExportLegacy(ctx context.Context, profileID string) ([]byte, error) {
	return json.Marshal(s.Checklist(ctx, profileID))
}
