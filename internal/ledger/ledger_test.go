package ledger

import (
	"testing"
	"time"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

func attempt(user string, score int, completed time.Time) model.CollectionAttempt {
	return model.CollectionAttempt{
		ID:           user + "-" + completed.Format("150405"),
		CollectionID: "col1",
		UserID:       user,
		UserName:     "name-" + user,
		TotalScore:   score,
		CompletedAt:  completed,
	}
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBestPerUser(t *testing.T) {
	records := []model.CollectionAttempt{
		attempt("u1", 100, t0),
		attempt("u1", 80, t0.Add(time.Hour)),
		attempt("u2", 50, t0),
	}
	best := BestPerUser(records)
	if len(best) != 2 {
		t.Fatalf("got %d users, want 2", len(best))
	}
	if best["u1"].TotalScore != 100 {
		t.Errorf("u1 best = %d, want 100", best["u1"].TotalScore)
	}
	if best["u2"].TotalScore != 50 {
		t.Errorf("u2 best = %d, want 50", best["u2"].TotalScore)
	}
}

func TestBestPerUserTieKeepsEarliest(t *testing.T) {
	early := attempt("u1", 100, t0)
	late := attempt("u1", 100, t0.Add(time.Hour))
	best := BestPerUser([]model.CollectionAttempt{late, early})
	if !best["u1"].CompletedAt.Equal(t0) {
		t.Errorf("tie kept %v, want earliest %v", best["u1"].CompletedAt, t0)
	}
}

func TestTopNOrderAndTieBreak(t *testing.T) {
	records := []model.CollectionAttempt{
		attempt("u1", 200, t0.Add(time.Hour)),
		attempt("u2", 200, t0), // same score, finished earlier
		attempt("u3", 300, t0),
		attempt("u4", 100, t0),
	}
	top := TopN(records, 3)
	if len(top) != 3 {
		t.Fatalf("got %d records, want 3", len(top))
	}
	wantOrder := []string{"u3", "u2", "u1"}
	for i, want := range wantOrder {
		if top[i].UserID != want {
			t.Errorf("top[%d] = %s, want %s", i, top[i].UserID, want)
		}
	}
}

func TestTopNDeduplicatesBeforeRanking(t *testing.T) {
	records := []model.CollectionAttempt{
		attempt("u1", 300, t0),
		attempt("u1", 250, t0.Add(time.Hour)),
		attempt("u2", 280, t0),
	}
	top := TopN(records, 10)
	if len(top) != 2 {
		t.Fatalf("duplicate rows leaked into ranking: %d entries", len(top))
	}
}

func TestRankOfOutsideTop(t *testing.T) {
	var records []model.CollectionAttempt
	for i := 0; i < 12; i++ {
		user := string(rune('a' + i))
		records = append(records, attempt(user, 1000-i*10, t0))
	}
	r := RankOf("l", records, 10) // 12th place
	if r.Record == nil {
		t.Fatal("expected a record for a user with attempts")
	}
	if r.IsInTop {
		t.Error("12th place must not be in top 10")
	}
	if r.Rank != 12 {
		t.Errorf("rank = %d, want 12", r.Rank)
	}

	top := RankOf("a", records, 10)
	if !top.IsInTop || top.Rank != 1 {
		t.Errorf("first place ranked %d (inTop=%v)", top.Rank, top.IsInTop)
	}
}

func TestRankOfUnknownUser(t *testing.T) {
	r := RankOf("ghost", []model.CollectionAttempt{attempt("u1", 100, t0)}, 10)
	if r.Record != nil || r.IsInTop {
		t.Errorf("unknown user should resolve to empty rank, got %+v", r)
	}
}

func TestAggregate(t *testing.T) {
	records := []model.CollectionAttempt{
		attempt("u1", 100, t0),
		attempt("u1", 40, t0.Add(time.Hour)), // duplicate, ignored
		attempt("u2", 51, t0),
	}
	stats := Aggregate(records)
	if stats.Completions != 2 {
		t.Errorf("completions = %d, want 2", stats.Completions)
	}
	// mean of 100 and 51 is 75.5, rounds to 76
	if stats.AvgScore != 76 {
		t.Errorf("avgScore = %d, want 76", stats.AvgScore)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	if stats.Completions != 0 || stats.AvgScore != 0 {
		t.Errorf("empty aggregate = %+v, want zeros", stats)
	}
}
