package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements ProgressStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS checklist_progress (
		profile_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, item_id)
	);

	CREATE INDEX IF NOT EXISTS idx_progress_profile ON checklist_progress(profile_id);
	`
	_, err := db.Exec(schema)
	return err
}

const upsertProgress = `INSERT INTO checklist_progress (profile_id, item_id, completed, updated_at)
	 VALUES (?, ?, ?, ?)
	 ON CONFLICT(profile_id, item_id) DO UPDATE SET completed = excluded.completed, updated_at = excluded.updated_at`

// GetProgress returns the saved items of a profile ordered by item id.
// An unknown profile has no saved items.
func (s *SQLiteStorage) GetProgress(ctx context.Context, profileID string) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, completed, updated_at FROM checklist_progress
		 WHERE profile_id = ? ORDER BY item_id`, profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.ItemID, &p.Completed, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetCompleted records the completion state of one item.
func (s *SQLiteStorage) SetCompleted(ctx context.Context, profileID, itemID string, completed bool) error {
	_, err := s.db.ExecContext(ctx, upsertProgress, profileID, itemID, completed, time.Now())
	return err
}

// SetMany records several items in a transaction.
func (s *SQLiteStorage) SetMany(ctx context.Context, profileID string, completed map[string]bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertProgress)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(completed))
	for id := range completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	now := time.Now()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, profileID, id, completed[id], now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResetProgress deletes every saved item of a profile.
func (s *SQLiteStorage) ResetProgress(ctx context.Context, profileID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checklist_progress WHERE profile_id = ?`, profileID)
	return err
}

// CountProfiles returns the number of profiles with saved progress.
func (s *SQLiteStorage) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT profile_id) FROM checklist_progress`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
