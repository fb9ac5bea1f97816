package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the remote record store backed by PostgreSQL. It is the
// authoritative home of challenges, collections, guesses and attempts;
// playthrough progress never lives here.
type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations creates the record tables. No unique constraint is placed on
// (collection_id, user_id) in collection_attempts: historical data contains
// duplicate rows and the ledger reduces them deterministically instead of
// the store deleting them.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS challenges (
			id TEXT PRIMARY KEY,
			image_ref TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			location_name TEXT NOT NULL DEFAULT '',
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			likes INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS collection_items (
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			challenge_id TEXT NOT NULL,
			PRIMARY KEY (collection_id, position)
		);
		CREATE TABLE IF NOT EXISTS guesses (
			id TEXT PRIMARY KEY,
			challenge_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			distance_meters DOUBLE PRECISION NOT NULL,
			score INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_guesses_user_challenge ON guesses(user_id, challenge_id);
		CREATE TABLE IF NOT EXISTS collection_attempts (
			id TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			total_score INTEGER NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_collection ON collection_attempts(collection_id);
	`)
	return err
}
