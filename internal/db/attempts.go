package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

var _ playthrough.RecordStore = (*DB)(nil)

// Attempts returns every attempt row for a collection, ordered by score
// descending then completion time ascending. Rows are returned raw; callers
// reduce duplicates through the ledger.
func (db *DB) Attempts(ctx context.Context, collectionID string) ([]model.CollectionAttempt, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, collection_id, user_id, user_name, total_score, completed_at
		FROM collection_attempts
		WHERE collection_id = $1
		ORDER BY total_score DESC, completed_at ASC
	`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CollectionAttempt
	for rows.Next() {
		var a model.CollectionAttempt
		if err := rows.Scan(
			&a.ID, &a.CollectionID, &a.UserID, &a.UserName, &a.TotalScore, &a.CompletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SubmitAttempt inserts the attempt when the user has none for the
// collection, and otherwise updates the stored best only when the new total
// score is strictly greater. A defective low submission can never regress a
// stored best, and a genuine higher replay is never dropped.
func (db *DB) SubmitAttempt(ctx context.Context, a *model.CollectionAttempt) error {
	var existingID string
	var existingScore int
	err := db.pool.QueryRow(ctx, `
		SELECT id, total_score FROM collection_attempts
		WHERE collection_id = $1 AND user_id = $2
		ORDER BY total_score DESC, completed_at ASC
		LIMIT 1
	`, a.CollectionID, a.UserID).Scan(&existingID, &existingScore)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = db.pool.Exec(ctx, `
			INSERT INTO collection_attempts (id, collection_id, user_id, user_name, total_score, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.CollectionID, a.UserID, a.UserName, a.TotalScore, a.CompletedAt)
		return err
	}
	if err != nil {
		return err
	}
	if a.TotalScore <= existingScore {
		return nil
	}
	_, err = db.pool.Exec(ctx, `
		UPDATE collection_attempts
		SET user_name = $2, total_score = $3, completed_at = $4
		WHERE id = $1
	`, existingID, a.UserName, a.TotalScore, a.CompletedAt)
	return err
}
