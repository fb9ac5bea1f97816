package db

import (
	"context"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

func (db *DB) InsertGuess(ctx context.Context, g *model.GuessRecord) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO guesses (id, challenge_id, user_id, user_name, lat, lng, distance_meters, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, g.ID, g.ChallengeID, g.UserID, g.UserName, g.Location.Lat, g.Location.Lng,
		g.DistanceMeters, g.Score, g.Timestamp)
	return err
}

// GuessesFor returns the user's guesses for any of the given challenge ids
// in a single query. This backs the engine's batch pre-answered check, one
// round trip instead of one per question.
func (db *DB) GuessesFor(ctx context.Context, userID string, challengeIDs []string) ([]model.GuessRecord, error) {
	if len(challengeIDs) == 0 {
		return nil, nil
	}
	rows, err := db.pool.Query(ctx, `
		SELECT id, challenge_id, user_id, user_name, lat, lng, distance_meters, score, created_at
		FROM guesses WHERE user_id = $1 AND challenge_id = ANY($2)
	`, userID, challengeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GuessRecord
	for rows.Next() {
		var g model.GuessRecord
		if err := rows.Scan(
			&g.ID, &g.ChallengeID, &g.UserID, &g.UserName,
			&g.Location.Lat, &g.Location.Lng, &g.DistanceMeters, &g.Score, &g.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
