// Package storage persists onboarding checklist progress.
package storage

import (
	"context"
	"time"
)

// Progress is the saved completion state of one checklist item for a profile.
type Progress struct {
	ItemID    string
	Completed bool
	UpdatedAt time.Time
}

// ProgressStore defines checklist progress persistence operations.
type ProgressStore interface {
	GetProgress(ctx context.Context, profileID string) ([]Progress, error)
	SetCompleted(ctx context.Context, profileID, itemID string, completed bool) error
	// SetMany writes several items for a profile in one transaction.
	SetMany(ctx context.Context, profileID string, completed map[string]bool) error
	ResetProgress(ctx context.Context, profileID string) error

	// Stats
	CountProfiles(ctx context.Context) (int64, error)

	Close() error
}
