package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

func (db *DB) InsertChallenge(ctx context.Context, c *model.Challenge) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO challenges (id, image_ref, lat, lng, location_name, author_id, author_name, created_at, likes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, c.ImageRef, c.Location.Lat, c.Location.Lng, c.LocationName, c.AuthorID, c.AuthorName, c.CreatedAt, c.Likes)
	return err
}

func (db *DB) Challenge(ctx context.Context, id string) (*model.Challenge, error) {
	var c model.Challenge
	err := db.pool.QueryRow(ctx, `
		SELECT id, image_ref, lat, lng, location_name, author_id, author_name, created_at, likes
		FROM challenges WHERE id = $1
	`, id).Scan(
		&c.ID, &c.ImageRef, &c.Location.Lat, &c.Location.Lng, &c.LocationName,
		&c.AuthorID, &c.AuthorName, &c.CreatedAt, &c.Likes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, playthrough.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// LikeChallenge increments the like counter and returns the new count.
func (db *DB) LikeChallenge(ctx context.Context, id string) (int, error) {
	var likes int
	err := db.pool.QueryRow(ctx,
		"UPDATE challenges SET likes = likes + 1 WHERE id = $1 RETURNING likes",
		id,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, playthrough.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

// RecentChallenges lists the newest challenges for the browse feed.
func (db *DB) RecentChallenges(ctx context.Context, limit int) ([]model.Challenge, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, image_ref, lat, lng, location_name, author_id, author_name, created_at, likes
		FROM challenges ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Challenge
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(
			&c.ID, &c.ImageRef, &c.Location.Lat, &c.Location.Lng, &c.LocationName,
			&c.AuthorID, &c.AuthorName, &c.CreatedAt, &c.Likes,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
