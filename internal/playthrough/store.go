package playthrough

import (
	"context"
	"errors"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

// ErrNotFound is the absence signal store implementations must return for
// missing records. The engine treats it as "skip and continue"; any other
// read error is transient and leaves the current question retryable.
var ErrNotFound = errors.New("not found")

// RecordStore is the remote, authoritative record store. Implementations
// must report absence with ErrNotFound.
type RecordStore interface {
	// Challenge fetches one challenge by id.
	Challenge(ctx context.Context, id string) (*model.Challenge, error)
	// GuessesFor returns the user's existing guesses for any of the given
	// challenge ids in a single query. Duplicate rows may be present.
	GuessesFor(ctx context.Context, userID string, challengeIDs []string) ([]model.GuessRecord, error)
	// InsertGuess persists a new guess record.
	InsertGuess(ctx context.Context, g *model.GuessRecord) error
	// SubmitAttempt inserts the attempt, or updates the user's stored
	// attempt only if the new total score is strictly greater.
	SubmitAttempt(ctx context.Context, a *model.CollectionAttempt) error
}

// ProgressStore is the device-local durable checkpoint store. Get returns
// (nil, nil) when no progress exists for the pair.
type ProgressStore interface {
	Get(ctx context.Context, collectionID, userID string) (*model.CollectionProgress, error)
	Put(ctx context.Context, p *model.CollectionProgress) error
}
