package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

// InsertCollection stores the descriptor and its ordered challenge ids. The
// ordering is fixed at creation time and never rewritten.
func (db *DB) InsertCollection(ctx context.Context, c *model.CollectionDescriptor) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO collections (id, name, author_id, author_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.AuthorID, c.AuthorName, c.CreatedAt)
	if err != nil {
		return err
	}
	for i, challengeID := range c.ChallengeIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO collection_items (collection_id, position, challenge_id)
			VALUES ($1, $2, $3)
		`, c.ID, i, challengeID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (db *DB) Collection(ctx context.Context, id string) (*model.CollectionDescriptor, error) {
	var c model.CollectionDescriptor
	err := db.pool.QueryRow(ctx, `
		SELECT id, name, author_id, author_name, created_at
		FROM collections WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.AuthorID, &c.AuthorName, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, playthrough.ErrNotFound
		}
		return nil, err
	}

	rows, err := db.pool.Query(ctx, `
		SELECT challenge_id FROM collection_items
		WHERE collection_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var challengeID string
		if err := rows.Scan(&challengeID); err != nil {
			return nil, err
		}
		c.ChallengeIDs = append(c.ChallengeIDs, challengeID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}
