package repositories

import (
	"errors"
	"testing"
	"time"

	"agent-hub/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializePending(t *testing.T) {
	repo := NewResultMemRepository(nil)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.InitializePending("c1", "a1", at)

	got, ok := repo.Get("c1")
	require.True(t, ok)
	assert.Equal(t, entities.StatusPending, got.Status)
	assert.Equal(t, "a1", got.AgentID)
	assert.Equal(t, at, got.StartTime)

	_, ok = repo.Get("missing")
	assert.False(t, ok)
}

func TestRecordResultOverwritesPlaceholder(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 5, 0, time.UTC)
	repo := NewResultMemRepository(func() time.Time { return now })
	repo.InitializePending("c1", "a1", now.Add(-5*time.Second))

	stored, err := repo.RecordResult(entities.CommandResponse{
		CommandID: "c1",
		AgentID:   "a1",
		Status:    entities.StatusFailed,
		StartTime: now.Add(-2 * time.Second),
		EndTime:   now,
		ExitCode:  1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2000, stored.ExecutionTimeMs)

	got, _ := repo.Get("c1")
	assert.Equal(t, stored, got)
	assert.Equal(t, entities.StatusFailed, got.Status)
	assert.Equal(t, 1, got.ExitCode)
}

func TestRecordResultDefaults(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewResultMemRepository(func() time.Time { return now })

	stored, err := repo.RecordResult(entities.CommandResponse{CommandID: "c9", AgentID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, stored.Status)
	assert.Equal(t, now, stored.EndTime)
	assert.Equal(t, now, stored.StartTime)
	assert.Zero(t, stored.ExecutionTimeMs)
}

func TestRecordResultRejectsMissingFields(t *testing.T) {
	repo := NewResultMemRepository(nil)

	_, err := repo.RecordResult(entities.CommandResponse{AgentID: "a1"})
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "commandId", verr.Field)

	_, err = repo.RecordResult(entities.CommandResponse{CommandID: "c1"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "agentId", verr.Field)

	_, ok := repo.Get("c1")
	assert.False(t, ok)
}

func TestSnapshotRepository(t *testing.T) {
	repo := NewSnapshotMemRepository[[]any]()
	_, ok := repo.Get("a1")
	assert.False(t, ok)

	repo.Put("a1", []any{"x"})
	repo.Put("a1", []any{"y", "z"})
	got, ok := repo.Get("a1")
	require.True(t, ok)
	assert.Equal(t, []any{"y", "z"}, got)
}
