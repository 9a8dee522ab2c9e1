package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/match-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleOutput() *model.MatchingOutput {
	score := 91.5
	top := model.MatchResult{
		Rank:       1,
		Candidate:  model.Candidate{ID: "cand-1", Title: "olive knit top"},
		RawScore:   score,
		FinalScore: score,
		Verification: model.VerificationState{
			Tier:       model.TierAutoHigh,
			Confidence: score,
		},
	}
	return &model.MatchingOutput{
		ProductName: "olive sweater",
		SearchQuery: "olive knit sweater",
		Candidates:  []model.MatchResult{top},
		TopMatch:    &top,
	}
}

func TestSQLite_RunLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "olive sweater")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, got.Status)
	assert.Nil(t, got.Result)

	require.NoError(t, s.SaveResult(ctx, run.ID, sampleOutput()))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "olive sweater", got.Result.ProductName)
	require.NotNil(t, got.Result.TopMatch)
	assert.InDelta(t, 91.5, got.Result.TopMatch.FinalScore, 1e-9)
	assert.Equal(t, model.TierAutoHigh, got.Result.TopMatch.Verification.Tier)
}

func TestSQLite_FailRun(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "olive sweater")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "search provider unreachable"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "search provider unreachable", got.Error)
}

func TestSQLite_UnknownRun(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateRunStatus(ctx, "nope", model.RunStatusScoring)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = s.GetRun(ctx, "nope")
	require.Error(t, err)
}

func TestSQLite_ListRuns(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, "olive sweater")
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, "gold necklace")
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(ctx, second.ID, sampleOutput()))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, second.ID, complete[0].ID)

	byProduct, err := s.ListRuns(ctx, RunFilter{Product: "olive sweater"})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, first.ID, byProduct[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
