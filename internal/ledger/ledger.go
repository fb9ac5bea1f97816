// Package ledger reduces raw collection-attempt rows into the canonical
// per-user view. The record store may hold duplicate rows per user from
// historical bugs; the fix is this deterministic reduction, never deleting
// data.
package ledger

import (
	"math"
	"sort"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

// Stats summarizes a collection's deduplicated attempts.
type Stats struct {
	Completions int `json:"completions"`
	AvgScore    int `json:"avg_score"`
}

// Rank is the result of resolving one user's position on a leaderboard.
type Rank struct {
	Record  *model.CollectionAttempt `json:"record"`
	Rank    int                      `json:"rank"`
	IsInTop bool                     `json:"is_in_top"`
}

// BestPerUser reduces attempt rows to one per user: highest TotalScore,
// ties broken by earliest CompletedAt.
func BestPerUser(records []model.CollectionAttempt) map[string]model.CollectionAttempt {
	best := make(map[string]model.CollectionAttempt, len(records))
	for _, rec := range records {
		cur, ok := best[rec.UserID]
		if !ok || better(rec, cur) {
			best[rec.UserID] = rec
		}
	}
	return best
}

// better reports whether a beats b under best-score-then-earliest semantics.
func better(a, b model.CollectionAttempt) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	return a.CompletedAt.Before(b.CompletedAt)
}

// TopN deduplicates, ranks by TotalScore descending (earliest CompletedAt
// first on ties) and returns at most n records.
func TopN(records []model.CollectionAttempt, n int) []model.CollectionAttempt {
	ranked := ranked(records)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RankOf resolves a user's deduplicated record and its position relative to
// the top n. The record is returned even when it falls outside the top n so
// the caller can render it separately. Record is nil when the user has no
// attempt at all.
func RankOf(userID string, records []model.CollectionAttempt, n int) Rank {
	ranked := ranked(records)
	for i := range ranked {
		if ranked[i].UserID == userID {
			rec := ranked[i]
			return Rank{Record: &rec, Rank: i + 1, IsInTop: i < n}
		}
	}
	return Rank{}
}

// Aggregate returns the distinct-completion count and the mean best score,
// rounded to the nearest integer. Zero records aggregate to zero.
func Aggregate(records []model.CollectionAttempt) Stats {
	best := BestPerUser(records)
	if len(best) == 0 {
		return Stats{}
	}
	var sum int
	for _, rec := range best {
		sum += rec.TotalScore
	}
	avg := int(math.Round(float64(sum) / float64(len(best))))
	return Stats{Completions: len(best), AvgScore: avg}
}

func ranked(records []model.CollectionAttempt) []model.CollectionAttempt {
	best := BestPerUser(records)
	out := make([]model.CollectionAttempt, 0, len(best))
	for _, rec := range best {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.Before(out[j].CompletedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
