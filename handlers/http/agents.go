package httpHandler

import (
	"net/http"
	"strconv"

	"agent-hub/entities"
	"agent-hub/usecases"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	agents    *usecases.AgentsUseCase
	telemetry *usecases.TelemetryUseCase
}

func NewAgentHandler(agents *usecases.AgentsUseCase, telemetry *usecases.TelemetryUseCase) *AgentHandler {
	return &AgentHandler{agents: agents, telemetry: telemetry}
}

type heartbeatReq struct {
	AgentID string `json:"agentId"`
	entities.IdentityFields
}

// POST /api/Agent/register
// Resolves the agent's logical id from its reported identity.
func (h *AgentHandler) Register(c *gin.Context) {
	var reg usecases.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		invalidBody(c, err)
		return
	}
	agent, err := h.agents.Register(&reg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agentId": agent.ID, "agent": agent})
}

// POST /api/Agent/heartbeat
func (h *AgentHandler) Heartbeat(c *gin.Context) {
	var req heartbeatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}
	agent, err := h.agents.Heartbeat(req.AgentID, req.IdentityFields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lastHeartbeat": agent.LastHeartbeat})
}

// GET /api/Admin/agents?onlineOnly=true&minutes=5
func (h *AgentHandler) List(c *gin.Context) {
	onlineOnly, err := strconv.ParseBool(c.DefaultQuery("onlineOnly", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "onlineOnly must be a boolean"})
		return
	}
	var window *int
	if m := c.Query("minutes"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be an integer"})
			return
		}
		window = &v
	}
	c.JSON(http.StatusOK, h.agents.List(onlineOnly, window))
}

// GET /api/Admin/agents/:agentId
func (h *AgentHandler) Get(c *gin.Context) {
	agent, err := h.agents.Get(c.Param("agentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// GET /api/Admin/agents/:agentId/metrics
// Latest sample, or an empty array when the agent never reported.
func (h *AgentHandler) Metrics(c *gin.Context) {
	if m, ok := h.telemetry.LatestMetrics(c.Param("agentId")); ok {
		c.JSON(http.StatusOK, m)
		return
	}
	c.JSON(http.StatusOK, []entities.SystemMetrics{})
}

// GET /api/Admin/agents/:agentId/metrics/aggregated
// GET /api/Admin/agents/:agentId/metrics/average
func (h *AgentHandler) MetricsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.telemetry.MetricsSummary(c.Param("agentId")))
}

// GET /api/Admin/agents/:agentId/metrics/trend
func (h *AgentHandler) MetricsTrend(c *gin.Context) {
	agentID := c.Param("agentId")
	c.JSON(http.StatusOK, gin.H{"agentId": agentID, "points": h.telemetry.MetricsTrend(agentID)})
}
