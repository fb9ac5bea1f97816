package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	p, err := s.Get(context.Background(), "col1", "u1")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	in := &model.CollectionProgress{
		CollectionID: "col1",
		UserID:       "u1",
		CompletedItems: []model.CompletedItem{
			{ChallengeID: "c1", Score: 5000, DistanceMeters: 12.5},
			{ChallengeID: "c2", Score: 1839, DistanceMeters: 2_000_000},
		},
		TotalScore: 6839,
		StartedAt:  started,
	}
	require.NoError(t, s.Put(ctx, in))

	out, err := s.Get(ctx, "col1", "u1")
	require.NoError(t, err)
	require.Equal(t, in.CollectionID, out.CollectionID)
	require.Equal(t, in.TotalScore, out.TotalScore)
	require.Equal(t, in.CompletedItems, out.CompletedItems)
	require.False(t, out.IsCompleted)
	require.True(t, out.StartedAt.Equal(started))
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &model.CollectionProgress{CollectionID: "col1", UserID: "u1", StartedAt: time.Now()}
	require.NoError(t, s.Put(ctx, p))

	done := time.Now()
	p.CompletedItems = []model.CompletedItem{{ChallengeID: "c1", Score: 4000}}
	p.TotalScore = 4000
	p.IsCompleted = true
	p.CompletedAt = &done
	require.NoError(t, s.Put(ctx, p))

	out, err := s.Get(ctx, "col1", "u1")
	require.NoError(t, err)
	require.True(t, out.IsCompleted)
	require.NotNil(t, out.CompletedAt)
	require.Equal(t, 4000, out.TotalScore)
}

func TestKeysAreNamespacedPerPair(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &model.CollectionProgress{CollectionID: "col1", UserID: "u1", TotalScore: 1}))
	require.NoError(t, s.Put(ctx, &model.CollectionProgress{CollectionID: "col1", UserID: "u2", TotalScore: 2}))
	require.NoError(t, s.Put(ctx, &model.CollectionProgress{CollectionID: "col2", UserID: "u1", TotalScore: 3}))

	for _, tt := range []struct {
		col, user string
		want      int
	}{
		{"col1", "u1", 1},
		{"col1", "u2", 2},
		{"col2", "u1", 3},
	} {
		out, err := s.Get(ctx, tt.col, tt.user)
		require.NoError(t, err)
		require.Equal(t, tt.want, out.TotalScore)
	}
}
