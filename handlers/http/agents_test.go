package httpHandler

import (
	"net/http"
	"testing"

	"agent-hub/cache"
	"agent-hub/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndReconcile(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/api/Agent/register", map[string]any{"machineName": "HOST1", "macAddress": "AA:BB:CC:DD:EE:FF"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[map[string]any](t, w)["agentId"].(string)
	require.NotEmpty(t, first)

	w = do(t, r, http.MethodPost, "/api/Agent/register", map[string]any{"machineName": "HOST1", "macAddress": "AA:BB:CC:DD:EE:FF", "ipAddress": "10.0.0.2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[map[string]any](t, w)["agentId"])

	w = do(t, r, http.MethodGet, "/api/Admin/agents/"+first, nil)
	require.Equal(t, http.StatusOK, w.Code)
	a := decode[entities.AgentIdentity](t, w)
	assert.Equal(t, "10.0.0.2", a.IPAddress)
	assert.Equal(t, "HOST1", a.MachineName)
}

func TestHeartbeat(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/api/Agent/heartbeat", map[string]any{"agentId": "A1", "operatingSystem": "Windows"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["lastHeartbeat"])

	w = do(t, r, http.MethodPost, "/api/Agent/heartbeat", map[string]any{"operatingSystem": "Windows"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAgents(t *testing.T) {
	r := newRouter()
	do(t, r, http.MethodPost, "/api/Agent/heartbeat", map[string]any{"agentId": "A1"})

	w := do(t, r, http.MethodGet, "/api/Admin/agents?onlineOnly=true&minutes=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entities.AgentIdentity](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/Admin/agents?onlineOnly=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/Admin/agents?minutes=five", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownAgent(t *testing.T) {
	w := do(t, newRouter(), http.MethodGet, "/api/Admin/agents/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodGet, "/api/Admin/agents/A1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/Metrics", map[string]any{"agentId": "A1", "cpuUsage": 40.0, "memoryUsage": 50.0})
	require.Equal(t, http.StatusOK, w.Code)
	do(t, r, http.MethodPost, "/api/Metrics", map[string]any{"agentId": "A1", "cpuUsage": 60.0, "memoryUsage": 70.0})

	w = do(t, r, http.MethodGet, "/api/Admin/agents/A1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60.0, decode[entities.SystemMetrics](t, w).CPUUsage)

	w = do(t, r, http.MethodGet, "/api/Admin/agents/A1/metrics/aggregated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := decode[cache.Summary](t, w)
	assert.Equal(t, 2, s.Samples)
	assert.InDelta(t, 50.0, s.AvgCPU, 0.001)

	w = do(t, r, http.MethodGet, "/api/Admin/agents/A1/metrics/trend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trend := decode[struct {
		AgentID string             `json:"agentId"`
		Points  []cache.TrendPoint `json:"points"`
	}](t, w)
	assert.Equal(t, "A1", trend.AgentID)
	assert.Len(t, trend.Points, 2)

	// metrics push counts as contact
	w = do(t, r, http.MethodGet, "/api/Admin/agents/A1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
