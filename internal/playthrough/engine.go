// Package playthrough drives one user's run through a collection: per
// question it decides between a fresh challenge, a summary of an answer the
// user already gave elsewhere, or the completion screen, while checkpointing
// resumable progress to the local store after every mutation.
package playthrough

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getupyang/geo-guess-diy/internal/geoscore"
	"github.com/getupyang/geo-guess-diy/internal/model"
)

// State is the engine's position in the playthrough lifecycle.
type State int

const (
	// StateInitializing: progress and pre-answered data not loaded yet.
	StateInitializing State = iota
	// StateLoading: the current question failed a transient read and can be
	// retried with Advance.
	StateLoading
	// StatePlaying: a fresh challenge is on screen awaiting a guess.
	StatePlaying
	// StateHistorical: read-only display of a pre-existing answer.
	StateHistorical
	// StateReviewing: read-only display of the just-computed result.
	StateReviewing
	// StateCompleted: every question handled, attempt submitted.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateHistorical:
		return "historical"
	case StateReviewing:
		return "reviewing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrInvalidState is returned when an operation is not legal in the
// engine's current state, e.g. submitting a guess twice.
var ErrInvalidState = errors.New("operation not valid in current state")

// ResumeIndex asks Start to resume at the first unanswered question.
const ResumeIndex = -1

// Result is the outcome shown for one answered question.
type Result struct {
	ChallengeID    string  `json:"challenge_id"`
	DistanceMeters float64 `json:"distance_meters"`
	Distance       string  `json:"distance"`
	Score          int     `json:"score"`
	Historical     bool    `json:"historical"`
}

// View is a read-only snapshot of the engine for the rendering layer.
type View struct {
	State      State                    `json:"state"`
	Index      int                      `json:"index"`
	Total      int                      `json:"total"`
	Challenge  *model.Challenge         `json:"challenge,omitempty"`
	Result     *Result                  `json:"result,omitempty"`
	Answered   int                      `json:"answered"`
	TotalScore int                      `json:"total_score"`
	Attempt    *model.CollectionAttempt `json:"attempt,omitempty"`
}

// Engine sequences one (collection, user) playthrough. All methods
// serialize on an internal mutex: a prefetch may run concurrently with the
// user answering the current question, but no two state transitions overlap.
type Engine struct {
	records  RecordStore
	progress ProgressStore
	now      func() time.Time

	mu       sync.Mutex
	col      *model.CollectionDescriptor
	userID   string
	userName string

	state      State
	index      int
	current    *model.Challenge
	lastResult *Result
	prog       *model.CollectionProgress
	answered   map[string]model.GuessRecord

	attempt          *model.CollectionAttempt
	attemptSubmitted bool
	resumedCompleted bool

	// Prefetch slot. pfIndex identifies which question a completed fetch
	// belongs to; a fetch whose index no longer matches is discarded.
	pfIndex     int
	pfChallenge *model.Challenge
	pfReady     bool
}

// New creates an engine for one user's run through col. Stores are injected;
// the engine never touches globals.
func New(records RecordStore, progress ProgressStore, col *model.CollectionDescriptor, userID, userName string) *Engine {
	return &Engine{
		records:  records,
		progress: progress,
		now:      time.Now,
		col:      col,
		userID:   userID,
		userName: userName,
		state:    StateInitializing,
		pfIndex:  -1,
	}
}

// Start restores or creates local progress, batch-fetches which challenges
// the user already answered outside this collection flow, and loads the
// first question. startIndex of ResumeIndex resumes after the last
// completed item.
func (e *Engine) Start(ctx context.Context, startIndex int) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInitializing {
		return e.viewLocked(), nil
	}

	prog, err := e.progress.Get(ctx, e.col.ID, e.userID)
	if err != nil {
		return nil, fmt.Errorf("restore progress: %w", err)
	}
	if prog == nil {
		prog = &model.CollectionProgress{
			CollectionID: e.col.ID,
			UserID:       e.userID,
			StartedAt:    e.now(),
		}
		if err := e.progress.Put(ctx, prog); err != nil {
			return nil, fmt.Errorf("create progress: %w", err)
		}
	}
	e.prog = prog
	e.resumedCompleted = prog.IsCompleted

	// One query for the whole collection instead of one per question.
	guesses, err := e.records.GuessesFor(ctx, e.userID, e.col.ChallengeIDs)
	if err != nil {
		return nil, fmt.Errorf("pre-answered check: %w", err)
	}
	e.answered = reduceGuesses(guesses)

	switch {
	case startIndex >= 0:
		e.index = startIndex
	case prog.IsCompleted:
		// Skipped (deleted) challenges can leave fewer items than questions;
		// a finished run still resumes at the completion screen.
		e.index = len(e.col.ChallengeIDs)
	default:
		e.index = len(prog.CompletedItems)
	}

	if err := e.loadLocked(ctx); err != nil {
		return e.viewLocked(), err
	}
	return e.viewLocked(), nil
}

// View returns the current snapshot.
func (e *Engine) View() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// SubmitGuess scores the player's guess against the current challenge,
// persists the guess record remotely and the progress checkpoint locally,
// then moves to the review screen. Guess coordinates must be geodetic; the
// rendering layer converts clicks before calling in. On a write failure the
// engine stays in Playing so the user can retry — it never silently
// advances past an unsaved guess.
func (e *Engine) SubmitGuess(ctx context.Context, guess model.GeoPoint) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying || e.current == nil {
		return nil, ErrInvalidState
	}

	distance, score := geoscore.Score(e.current.Location, guess)
	rec := model.GuessRecord{
		ID:             uuid.NewString(),
		ChallengeID:    e.current.ID,
		UserID:         e.userID,
		UserName:       e.userName,
		Location:       guess,
		DistanceMeters: distance,
		Score:          score,
		Timestamp:      e.now(),
	}

	if err := e.records.InsertGuess(ctx, &rec); err != nil {
		return nil, fmt.Errorf("persist guess: %w", err)
	}

	item := model.CompletedItem{
		ChallengeID:    rec.ChallengeID,
		Score:          rec.Score,
		DistanceMeters: rec.DistanceMeters,
	}
	e.prog.AppendItem(item)
	if err := e.progress.Put(ctx, e.prog); err != nil {
		// Roll back so the checkpoint and memory agree. A duplicate guess
		// row from the user's retry is tolerated by the dedup reduction.
		e.removeItem(item.ChallengeID)
		return nil, fmt.Errorf("checkpoint progress: %w", err)
	}
	e.answered[rec.ChallengeID] = rec

	e.lastResult = &Result{
		ChallengeID:    rec.ChallengeID,
		DistanceMeters: rec.DistanceMeters,
		Distance:       geoscore.FormatDistance(rec.DistanceMeters),
		Score:          rec.Score,
		Historical:     false,
	}
	e.state = StateReviewing
	return e.lastResult, nil
}

// Advance moves forward from a review, historical, or retryable loading
// state. From Reviewing or Historical it loads the next question; from
// Loading it retries the current one.
func (e *Engine) Advance(ctx context.Context) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateReviewing, StateHistorical:
		e.index++
	case StateLoading:
		// retry same index
	case StateCompleted:
		return e.viewLocked(), nil
	default:
		return nil, ErrInvalidState
	}

	if err := e.loadLocked(ctx); err != nil {
		return e.viewLocked(), err
	}
	return e.viewLocked(), nil
}

// loadLocked resolves the question at e.index: completion past the end,
// historical display for pre-answered ids, otherwise a fresh challenge.
// Deleted challenges are skipped rather than blocking the playthrough.
func (e *Engine) loadLocked(ctx context.Context) error {
	for {
		if e.index >= len(e.col.ChallengeIDs) {
			return e.finalizeLocked(ctx)
		}
		id := e.col.ChallengeIDs[e.index]

		if rec, ok := e.answered[id]; ok {
			if !e.prog.HasItem(id) {
				e.prog.AppendItem(model.CompletedItem{
					ChallengeID:    id,
					Score:          rec.Score,
					DistanceMeters: rec.DistanceMeters,
				})
				if err := e.progress.Put(ctx, e.prog); err != nil {
					e.removeItem(id)
					e.state = StateLoading
					return fmt.Errorf("checkpoint progress: %w", err)
				}
			}
			e.current = nil
			e.lastResult = &Result{
				ChallengeID:    id,
				DistanceMeters: rec.DistanceMeters,
				Distance:       geoscore.FormatDistance(rec.DistanceMeters),
				Score:          rec.Score,
				Historical:     true,
			}
			e.state = StateHistorical
			return nil
		}

		ch := e.takePrefetchedLocked(id)
		if ch == nil {
			var err error
			ch, err = e.records.Challenge(ctx, id)
			if errors.Is(err, ErrNotFound) {
				// Deleted remotely: skip and keep going.
				e.index++
				continue
			}
			if err != nil {
				e.state = StateLoading
				return fmt.Errorf("load challenge %s: %w", id, err)
			}
		}

		e.current = ch
		e.lastResult = nil
		e.state = StatePlaying
		e.prefetchLocked(e.index + 1)
		return nil
	}
}

// finalizeLocked marks the playthrough complete, checkpoints locally, then
// submits the attempt under best-score-wins semantics. A collection that
// shrank below the restored index completes immediately instead of erroring.
func (e *Engine) finalizeLocked(ctx context.Context) error {
	if !e.prog.IsCompleted {
		now := e.now()
		e.prog.IsCompleted = true
		e.prog.CompletedAt = &now
		if err := e.progress.Put(ctx, e.prog); err != nil {
			e.prog.IsCompleted = false
			e.prog.CompletedAt = nil
			e.state = StateLoading
			return fmt.Errorf("checkpoint progress: %w", err)
		}
	}

	if !e.attemptSubmitted && !e.resumedCompleted {
		completedAt := e.now()
		if e.prog.CompletedAt != nil {
			completedAt = *e.prog.CompletedAt
		}
		attempt := model.CollectionAttempt{
			ID:           uuid.NewString(),
			CollectionID: e.col.ID,
			UserID:       e.userID,
			UserName:     e.userName,
			TotalScore:   e.prog.TotalScore,
			CompletedAt:  completedAt,
		}
		if err := e.records.SubmitAttempt(ctx, &attempt); err != nil {
			// Stay retryable: the next Advance lands here again.
			e.state = StateLoading
			return fmt.Errorf("submit attempt: %w", err)
		}
		e.attempt = &attempt
		e.attemptSubmitted = true
	}

	e.current = nil
	e.lastResult = nil
	e.state = StateCompleted
	return nil
}

// prefetchLocked starts an async fetch of the challenge at index, unless
// that id is pre-answered (it would be skipped anyway) or out of range.
func (e *Engine) prefetchLocked(index int) {
	if index >= len(e.col.ChallengeIDs) {
		return
	}
	id := e.col.ChallengeIDs[index]
	if _, ok := e.answered[id]; ok {
		return
	}
	if e.pfIndex == index {
		return
	}
	e.pfIndex = index
	e.pfChallenge = nil
	e.pfReady = false

	go func() {
		ch, err := e.records.Challenge(context.Background(), id)
		e.mu.Lock()
		defer e.mu.Unlock()
		// Discard if the engine has moved on since this fetch started.
		if e.pfIndex != index {
			return
		}
		if err != nil {
			// Prefetch is best effort: the foreground load retries.
			e.pfIndex = -1
			return
		}
		e.pfChallenge = ch
		e.pfReady = true
	}()
}

// takePrefetchedLocked consumes the prefetched challenge if it matches the
// wanted id; stale or missing prefetches fall back to a foreground fetch.
func (e *Engine) takePrefetchedLocked(id string) *model.Challenge {
	if !e.pfReady || e.pfChallenge == nil || e.pfChallenge.ID != id {
		return nil
	}
	ch := e.pfChallenge
	e.pfIndex = -1
	e.pfChallenge = nil
	e.pfReady = false
	return ch
}

func (e *Engine) removeItem(challengeID string) {
	items := e.prog.CompletedItems
	for i := range items {
		if items[i].ChallengeID == challengeID {
			e.prog.TotalScore -= items[i].Score
			e.prog.CompletedItems = append(items[:i], items[i+1:]...)
			return
		}
	}
}

func (e *Engine) viewLocked() *View {
	v := &View{
		State:   e.state,
		Index:   e.index,
		Total:   len(e.col.ChallengeIDs),
		Result:  e.lastResult,
		Attempt: e.attempt,
	}
	if e.prog != nil {
		v.Answered = len(e.prog.CompletedItems)
		v.TotalScore = e.prog.TotalScore
	}
	if e.state == StatePlaying {
		v.Challenge = e.current
	}
	return v
}

// reduceGuesses collapses possibly-duplicated guess rows to one per
// challenge: highest score, tie-broken by earliest timestamp.
func reduceGuesses(guesses []model.GuessRecord) map[string]model.GuessRecord {
	best := make(map[string]model.GuessRecord, len(guesses))
	for _, g := range guesses {
		cur, ok := best[g.ChallengeID]
		if !ok || g.Score > cur.Score ||
			(g.Score == cur.Score && g.Timestamp.Before(cur.Timestamp)) {
			best[g.ChallengeID] = g
		}
	}
	return best
}
