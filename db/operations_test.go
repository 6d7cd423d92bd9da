// ABOUTME: Tests for journaling store operations
// ABOUTME: Covers state folding, log ordering, and pruning
package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordOperationFoldsState(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, RecordOperation(db, "dashboard", "dashboard/fetchStats", "pending", "", start))

	state, err := GetOperationState(db, "dashboard/fetchStats")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "pending", state.LastPhase)
	require.NotNil(t, state.LastStartedAt)
	assert.True(t, start.Equal(*state.LastStartedAt))
	assert.Nil(t, state.LastFinishedAt)

	require.NoError(t, RecordOperation(db, "dashboard", "dashboard/fetchStats", "rejected", "Failed to fetch dashboard statistics", start.Add(time.Second)))

	state, err = GetOperationState(db, "dashboard/fetchStats")
	require.NoError(t, err)
	assert.Equal(t, "rejected", state.LastPhase)
	require.NotNil(t, state.ErrorMessage)
	assert.Equal(t, "Failed to fetch dashboard statistics", *state.ErrorMessage)
	require.NotNil(t, state.LastStartedAt, "start time survives the finish")
	require.NotNil(t, state.LastFinishedAt)

	require.NoError(t, RecordOperation(db, "dashboard", "dashboard/fetchStats", "fulfilled", "", start.Add(2*time.Second)))
	state, err = GetOperationState(db, "dashboard/fetchStats")
	require.NoError(t, err)
	assert.Nil(t, state.ErrorMessage)
}

func TestGetOperationStateMissing(t *testing.T) {
	db := openTestDB(t)
	state, err := GetOperationState(db, "nope/never")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestGetAllOperationStatesOrdered(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	require.NoError(t, RecordOperation(db, "team", "team/fetchMembers", "fulfilled", "", now))
	require.NoError(t, RecordOperation(db, "auth", "auth/login", "fulfilled", "", now))

	states, err := GetAllOperationStates(db)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "auth/login", states[0].Op)
	assert.Equal(t, "team/fetchMembers", states[1].Op)
}

func TestRecentOperationsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, phase := range []string{"pending", "fulfilled", "pending"} {
		require.NoError(t, RecordOperation(db, "sales", "sales/getAll", phase, "", base.Add(time.Duration(i)*time.Second)))
	}

	events, err := RecentOperations(db, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "pending", events[0].Phase)
	assert.Equal(t, "fulfilled", events[1].Phase)
}

func TestPruneOperationLog(t *testing.T) {
	db := openTestDB(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, RecordOperation(db, "rewards", "rewards/fetchList", "pending", "", base.Add(time.Duration(i)*time.Millisecond)))
	}

	removed, err := PruneOperationLog(db, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	events, err := RecentOperations(db, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
