package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdimyadi/bimrl/internal/timeutil"
)

func TestRunStore_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	store := NewRunStore(db.DB)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store.SetClock(clock)
	ctx := context.Background()

	run, err := store.Start(ctx, "tower")
	require.NoError(t, err)
	_, err = uuid.Parse(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunRunning, run.Status)

	got, err := store.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.Equal(t, run.StartedAt.UnixNano(), got.StartedAt.UnixNano())

	clock.Advance(2 * time.Second)
	run.ElementCount, run.CellCount = 3, 17
	require.NoError(t, store.Finish(ctx, run, nil))
	got, err = store.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, got.Status)
	assert.Equal(t, 3, got.ElementCount)
	assert.Equal(t, 17, got.CellCount)
	assert.Empty(t, got.ErrorMessage)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, 2*time.Second, got.FinishedAt.Sub(got.StartedAt))
}

func TestRunStore_Failed(t *testing.T) {
	db := newTestDB(t)
	store := NewRunStore(db.DB)
	ctx := context.Background()

	run, err := store.Start(ctx, "tower")
	require.NoError(t, err)
	run.ElementCount, run.FailedCount = 4, 1
	require.NoError(t, store.Finish(ctx, run, errors.New("element slab-1: outside world")))

	got, err := store.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunFailed, got.Status)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, "element slab-1: outside world", got.ErrorMessage)
}

func TestRunStore_NotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewRunStore(db.DB)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))

	err = store.Finish(ctx, &IndexRun{RunID: "missing"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunStore_List(t *testing.T) {
	db := newTestDB(t)
	store := NewRunStore(db.DB)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store.SetClock(clock)
	ctx := context.Background()

	var ids []string
	for range 3 {
		run, err := store.Start(ctx, "tower")
		require.NoError(t, err)
		ids = append(ids, run.RunID)
		clock.Advance(time.Minute)
	}
	_, err := store.Start(ctx, "bridge")
	require.NoError(t, err)

	runs, err := store.List(ctx, "tower", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, r := range runs {
		assert.Equal(t, ids[len(ids)-1-i], r.RunID, "runs not newest first")
	}

	runs, err = store.List(ctx, "tower", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = store.List(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
