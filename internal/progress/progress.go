// Package progress is the device-local durable checkpoint store. Progress
// is keyed by (collection, user), overwritten on every mutation and never
// transmitted anywhere.
package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

var _ playthrough.ProgressStore = (*Store)(nil)

// Store is a small key/value table in a local SQLite file.
type Store struct {
	db *sqlx.DB
}

// Open connects to (or creates) the local progress database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "progress.db"
	}
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS progress_kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		return nil, fmt.Errorf("failed to create progress table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(collectionID, userID string) string {
	return fmt.Sprintf("progress:%s:%s", collectionID, userID)
}

// Get returns the stored progress, or (nil, nil) when none exists.
func (s *Store) Get(ctx context.Context, collectionID, userID string) (*model.CollectionProgress, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw,
		"SELECT value FROM progress_kv WHERE key = ?", key(collectionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p model.CollectionProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("corrupt progress for %s/%s: %w", collectionID, userID, err)
	}
	return &p, nil
}

// Put overwrites the checkpoint for the progress's (collection, user) pair.
func (s *Store) Put(ctx context.Context, p *model.CollectionProgress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key(p.CollectionID, p.UserID), string(raw))
	return err
}
