package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "德国", []string{"1", "2", "3"})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "德国", got.Jurisdiction)
	assert.Equal(t, []string{"1", "2", "3"}, got.QuestionIDs)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestSQLite_GetRunMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "法国", []string{"1"})
	require.NoError(t, err)

	err = st.CompleteRun(ctx, run.ID, RunStatusComplete, 4200, "")
	require.NoError(t, err)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Equal(t, 4200, got.ReportChars)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_CompleteRunFailed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "阿根廷", []string{"2"})
	require.NoError(t, err)

	err = st.CompleteRun(ctx, run.ID, RunStatusFailed, 0, "未找到阿根廷的法律法规文件")
	require.NoError(t, err)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "未找到阿根廷的法律法规文件", got.Error)
}

func TestSQLite_CompleteRunMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "nonexistent", RunStatusComplete, 0, "")
	assert.Error(t, err)
}

func TestSQLite_ListRunsFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "英国", []string{"1"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "荷兰", []string{"1"})
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, a.ID, RunStatusComplete, 100, ""))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	uk, err := st.ListRuns(ctx, RunFilter{Jurisdiction: "英国"})
	require.NoError(t, err)
	require.Len(t, uk, 1)
	assert.Equal(t, a.ID, uk[0].ID)

	done, err := st.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, a.ID, done[0].ID)
}

func TestSQLite_ListRunsLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.CreateRun(ctx, "土耳其", []string{"1"})
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
