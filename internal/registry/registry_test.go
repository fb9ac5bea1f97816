package registry

import (
	"context"
	"testing"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

type nullRecords struct{}

func (nullRecords) Challenge(ctx context.Context, id string) (*model.Challenge, error) {
	return nil, playthrough.ErrNotFound
}
func (nullRecords) GuessesFor(ctx context.Context, userID string, ids []string) ([]model.GuessRecord, error) {
	return nil, nil
}
func (nullRecords) InsertGuess(ctx context.Context, g *model.GuessRecord) error { return nil }
func (nullRecords) SubmitAttempt(ctx context.Context, a *model.CollectionAttempt) error {
	return nil
}

type nullProgress struct{}

func (nullProgress) Get(ctx context.Context, collectionID, userID string) (*model.CollectionProgress, error) {
	return nil, nil
}
func (nullProgress) Put(ctx context.Context, p *model.CollectionProgress) error { return nil }

func TestAcquireReusesEngine(t *testing.T) {
	r := New(nullRecords{}, nullProgress{})
	col := &model.CollectionDescriptor{ID: "col1", ChallengeIDs: []string{"c1"}}

	e1, created := r.Acquire(col, "u1", "Ulla")
	if !created {
		t.Fatal("first Acquire should create")
	}
	e2, created := r.Acquire(col, "u1", "Ulla")
	if created || e2 != e1 {
		t.Error("second Acquire for the same pair should reuse the engine")
	}

	e3, created := r.Acquire(col, "u2", "Vera")
	if !created || e3 == e1 {
		t.Error("a different user must get a distinct engine")
	}
}

func TestDropForgetsEngine(t *testing.T) {
	r := New(nullRecords{}, nullProgress{})
	col := &model.CollectionDescriptor{ID: "col1", ChallengeIDs: []string{"c1"}}

	e1, _ := r.Acquire(col, "u1", "Ulla")
	r.Drop("col1", "u1")
	if _, ok := r.Get("col1", "u1"); ok {
		t.Fatal("dropped engine still registered")
	}
	e2, created := r.Acquire(col, "u1", "Ulla")
	if !created || e2 == e1 {
		t.Error("Acquire after Drop should build a fresh engine")
	}
}
