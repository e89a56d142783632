package database

import (
	"path/filepath"
	"testing"
	"time"

	"autothread-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openHistory(t *testing.T) *HistoryDB {
	t.Helper()
	h, err := InitHistoryDB(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := openHistory(t)
	require.NoError(t, h.Record(models.OnboardingRun{
		RunID: "r1", GuildID: "G1", ThreadID: "T1", Timestamp: 100,
		AddedUsers: []string{"U1", "U2"},
	}))
	require.NoError(t, h.Record(models.OnboardingRun{
		RunID: "r2", GuildID: "G1", ThreadID: "T2", Timestamp: 200, Pinned: true,
		FinalName: "(Bob) Help", CreatorID: "A1", RemovedUsers: []string{"U9"},
	}))
	require.NoError(t, h.Record(models.OnboardingRun{RunID: "r3", GuildID: "G2", ThreadID: "T3", Timestamp: 300}))

	runs, err := h.Recent("G1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "T2", runs[0].ThreadID)
	assert.True(t, runs[0].Pinned)
	assert.Equal(t, "(Bob) Help", runs[0].FinalName)
	assert.Equal(t, "A1", runs[0].CreatorID)
	assert.Equal(t, []string{"U9"}, runs[0].RemovedUsers)
	assert.Nil(t, runs[0].AddedUsers)
	assert.Equal(t, []string{"U1", "U2"}, runs[1].AddedUsers)

	runs, err = h.Recent("G1", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestHistoryCleanup(t *testing.T) {
	h := openHistory(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.Record(models.OnboardingRun{RunID: "old", GuildID: "G1", ThreadID: "T1", Timestamp: now.AddDate(0, 0, -40).Unix()}))
	require.NoError(t, h.Record(models.OnboardingRun{RunID: "new", GuildID: "G1", ThreadID: "T2", Timestamp: now.AddDate(0, 0, -1).Unix()}))

	n, err := h.CleanupOlderThan(30, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := h.Recent("G1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].RunID)
}
