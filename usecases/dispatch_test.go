package usecases

import (
	"errors"
	"sync"
	"testing"
	"time"

	"agent-hub/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPollReportLifecycle(t *testing.T) {
	uc, _, _, n := newDispatch()

	// submit without an id
	id, err := uc.Submit(&entities.CommandRequest{TargetAgentID: "A1", CommandType: 3})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	st := uc.GetStatus(id)
	assert.Equal(t, StatusStillPending, st.Kind)

	// first poll drains, second is empty
	cmds, err := uc.Poll("A1")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, id, cmds[0].CommandID)
	assert.Equal(t, 3, cmds[0].CommandType)
	assert.Equal(t, fixedNow, cmds[0].Timestamp)

	cmds, err = uc.Poll("A1")
	require.NoError(t, err)
	assert.NotNil(t, cmds)
	assert.Empty(t, cmds)

	// still pending after delivery, through the placeholder
	st = uc.GetStatus(id)
	assert.Equal(t, StatusStillPending, st.Kind)
	require.NotNil(t, st.Response)
	assert.Equal(t, entities.StatusPending, st.Response.Status)

	_, err = uc.ReportResult(&entities.CommandResponse{
		CommandID: id,
		AgentID:   "A1",
		Status:    entities.StatusCompleted,
		ExitCode:  0,
		Output:    "ok",
	})
	require.NoError(t, err)

	st = uc.GetStatus(id)
	assert.Equal(t, StatusFound, st.Kind)
	require.NotNil(t, st.Response)
	assert.Equal(t, entities.StatusCompleted, st.Response.Status)
	assert.Equal(t, "ok", st.Response.Output)

	assert.Equal(t, []string{EventCommandQueued, EventCommandsDelivered, EventCommandResult}, n.names())
}

func TestSubmitKeepsCallerID(t *testing.T) {
	uc, _, _, _ := newDispatch()
	ts := time.Date(2026, 4, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))

	id, err := uc.Submit(&entities.CommandRequest{CommandID: "mine", TargetAgentID: "A1", Timestamp: ts, Priority: 9})
	require.NoError(t, err)
	assert.Equal(t, "mine", id)

	cmds, _ := uc.Poll("A1")
	require.Len(t, cmds, 1)
	assert.True(t, cmds[0].Timestamp.Equal(ts))
	assert.Equal(t, time.UTC, cmds[0].Timestamp.Location())
	assert.Equal(t, 9, cmds[0].Priority)
}

func TestSubmitDefaultsParameters(t *testing.T) {
	uc, _, _, _ := newDispatch()
	_, err := uc.Submit(&entities.CommandRequest{TargetAgentID: "A1"})
	require.NoError(t, err)

	cmds, _ := uc.Poll("A1")
	require.Len(t, cmds, 1)
	assert.NotNil(t, cmds[0].Parameters)
	assert.Empty(t, cmds[0].Parameters)
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	uc, _, _, _ := newDispatch()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := uc.Submit(&entities.CommandRequest{TargetAgentID: "A1"})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSubmitValidationLeavesNoState(t *testing.T) {
	uc, q, r, n := newDispatch()

	_, err := uc.Submit(nil)
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = uc.Submit(&entities.CommandRequest{CommandID: "c1", TargetAgentID: "  "})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "targetAgentId", verr.Field)

	assert.Zero(t, q.Depth())
	assert.False(t, q.IsQueued("c1"))
	_, ok := r.Get("c1")
	assert.False(t, ok)
	assert.Empty(t, n.names())
}

func TestPollRequiresAgentID(t *testing.T) {
	uc, _, _, _ := newDispatch()
	_, err := uc.Poll("")
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "agentId", verr.Field)
}

func TestPollUnknownAgent(t *testing.T) {
	uc, _, _, n := newDispatch()
	cmds, err := uc.Poll("nobody")
	require.NoError(t, err)
	assert.Empty(t, cmds)
	assert.Empty(t, n.names())
}

func TestGetStatusUnknown(t *testing.T) {
	uc, _, _, _ := newDispatch()
	st := uc.GetStatus("does-not-exist")
	assert.Equal(t, StatusUnknown, st.Kind)
	assert.Nil(t, st.Response)
}

func TestGetStatusQueuedWithoutRecord(t *testing.T) {
	uc, q, _, _ := newDispatch()
	q.Enqueue("A1", entities.CommandRequest{CommandID: "orphan", TargetAgentID: "A1"})

	st := uc.GetStatus("orphan")
	assert.Equal(t, StatusStillPending, st.Kind)
	assert.Nil(t, st.Response)
}

func TestReportResultForUnknownCommand(t *testing.T) {
	uc, _, _, _ := newDispatch()

	stored, err := uc.ReportResult(&entities.CommandResponse{CommandID: "late", AgentID: "A1"})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, stored.Status)
	assert.Equal(t, fixedNow, stored.EndTime)

	st := uc.GetStatus("late")
	assert.Equal(t, StatusFound, st.Kind)
}

func TestReportResultKeepsUnrecognisedStatus(t *testing.T) {
	uc, _, _, _ := newDispatch()

	stored, err := uc.ReportResult(&entities.CommandResponse{CommandID: "c1", AgentID: "A1", Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", stored.Status)
	assert.Equal(t, StatusFound, uc.GetStatus("c1").Kind)
}

func TestReportResultValidation(t *testing.T) {
	uc, _, r, _ := newDispatch()

	_, err := uc.ReportResult(&entities.CommandResponse{CommandID: "c1"})
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "agentId", verr.Field)

	_, err = uc.ReportResult(nil)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "commandId", verr.Field)

	_, ok := r.Get("c1")
	assert.False(t, ok)
}

func TestConcurrentPollsDeliverOnce(t *testing.T) {
	uc, _, _, _ := newDispatch()
	const total = 200
	for i := 0; i < total; i++ {
		_, err := uc.Submit(&entities.CommandRequest{TargetAgentID: "A1"})
		require.NoError(t, err)
	}

	var (
		mu  sync.Mutex
		got = make(map[string]int)
		wg  sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmds, err := uc.Poll("A1")
			assert.NoError(t, err)
			mu.Lock()
			for _, c := range cmds {
				got[c.CommandID]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, got, total)
	for _, n := range got {
		assert.Equal(t, 1, n)
	}
}

func TestStatusKindString(t *testing.T) {
	assert.Equal(t, "found", StatusFound.String())
	assert.Equal(t, "pending", StatusStillPending.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}
