package httpHandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agent-hub/cache"
	"agent-hub/entities"
	"agent-hub/repositories"
	"agent-hub/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	log := zerolog.Nop()
	agents := usecases.NewAgentsUseCase(repositories.NewAgentMemRepository(), nil, log, 5)
	dispatch := usecases.NewDispatchUseCase(repositories.NewCommandQueueMemRepository(), repositories.NewResultMemRepository(time.Now), nil, log)
	telemetry := usecases.NewTelemetryUseCase(agents, usecases.TelemetryStores{
		Metrics:  repositories.NewSnapshotMemRepository[entities.SystemMetrics](),
		Ports:    repositories.NewSnapshotMemRepository[[]any](),
		Software: repositories.NewSnapshotMemRepository[entities.InstalledSoftwareData](),
		History:  cache.NewMetricsCache(10),
	}, nil, log)

	cmd := NewCommandHandler(dispatch)
	ag := NewAgentHandler(agents, telemetry)
	tel := NewTelemetryHandler(telemetry)

	r := gin.New()
	r.POST("/api/Command", cmd.Queue)
	r.GET("/api/Command/pending/:agentId", cmd.Pending)
	r.GET("/api/Command/:commandId", cmd.Status)
	r.POST("/api/Command/result", cmd.Result)
	r.POST("/api/Agent/register", ag.Register)
	r.POST("/api/Agent/heartbeat", ag.Heartbeat)
	r.GET("/api/Admin/agents", ag.List)
	r.GET("/api/Admin/agents/:agentId", ag.Get)
	r.GET("/api/Admin/agents/:agentId/metrics", ag.Metrics)
	r.GET("/api/Admin/agents/:agentId/metrics/aggregated", ag.MetricsSummary)
	r.GET("/api/Admin/agents/:agentId/metrics/trend", ag.MetricsTrend)
	r.POST("/api/Metrics", tel.PushMetrics)
	r.POST("/api/NetworkPort", tel.SubmitNetworkPorts)
	r.GET("/api/NetworkPort/:agentId", tel.NetworkPorts)
	r.POST("/api/InstalledSoftware", tel.SubmitInstalledSoftware)
	r.GET("/api/InstalledSoftware/:agentId/latest", tel.InstalledSoftware)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCommandFlow(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/api/Command", map[string]any{"targetAgentId": "A1", "commandType": 3})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]string](t, w)["commandId"]
	require.NotEmpty(t, id)

	// queued with a placeholder record
	w = do(t, r, http.MethodGet, "/api/Command/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.StatusPending, decode[entities.CommandResponse](t, w).Status)

	w = do(t, r, http.MethodGet, "/api/Command/pending/A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cmds := decode[[]entities.CommandRequest](t, w)
	require.Len(t, cmds, 1)
	assert.Equal(t, id, cmds[0].CommandID)

	w = do(t, r, http.MethodGet, "/api/Command/pending/A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/Command/result", map[string]any{
		"commandId": id, "agentId": "A1", "status": "Completed", "exitCode": 0, "output": "ok",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/Command/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[entities.CommandResponse](t, w)
	assert.Equal(t, entities.StatusCompleted, resp.Status)
	assert.Equal(t, "ok", resp.Output)
}

func TestPendingCommandsCarryEmptyParameters(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/api/Command", map[string]any{"targetAgentId": "A1", "commandType": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/Command/pending/A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cmds := decode[[]map[string]json.RawMessage](t, w)
	require.Len(t, cmds, 1)
	assert.JSONEq(t, `{}`, string(cmds[0]["parameters"]))
}

func TestCommandStatusNotFound(t *testing.T) {
	w := do(t, newRouter(), http.MethodGet, "/api/Command/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"command not found"}`, w.Body.String())
}

func TestQueueValidation(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/api/Command", map[string]any{"commandType": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "targetAgentId required")

	w = do(t, r, http.MethodPost, "/api/Command", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/Command", "null")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultValidation(t *testing.T) {
	w := do(t, newRouter(), http.MethodPost, "/api/Command/result", map[string]any{"commandId": "c1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "agentId required")
}
