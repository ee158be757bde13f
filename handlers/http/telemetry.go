package httpHandler

import (
	"net/http"

	"agent-hub/entities"
	"agent-hub/usecases"

	"github.com/gin-gonic/gin"
)

type TelemetryHandler struct {
	telemetry *usecases.TelemetryUseCase
}

func NewTelemetryHandler(uc *usecases.TelemetryUseCase) *TelemetryHandler {
	return &TelemetryHandler{telemetry: uc}
}

// POST /api/Metrics
func (h *TelemetryHandler) PushMetrics(c *gin.Context) {
	var m entities.SystemMetrics
	if err := c.ShouldBindJSON(&m); err != nil {
		invalidBody(c, err)
		return
	}
	if err := h.telemetry.PushMetrics(&m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/NetworkPort
func (h *TelemetryHandler) SubmitNetworkPorts(c *gin.Context) {
	var data entities.NetworkPortData
	if err := c.ShouldBindJSON(&data); err != nil {
		invalidBody(c, err)
		return
	}
	if err := h.telemetry.SubmitNetworkPorts(&data); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/NetworkPort/:agentId, GET /api/NetworkPort/:agentId/latest
func (h *TelemetryHandler) NetworkPorts(c *gin.Context) {
	c.JSON(http.StatusOK, h.telemetry.NetworkPorts(c.Param("agentId")))
}

// POST /api/InstalledSoftware
func (h *TelemetryHandler) SubmitInstalledSoftware(c *gin.Context) {
	var data entities.InstalledSoftwareData
	if err := c.ShouldBindJSON(&data); err != nil {
		invalidBody(c, err)
		return
	}
	if err := h.telemetry.SubmitInstalledSoftware(&data); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/InstalledSoftware/:agentId/latest
func (h *TelemetryHandler) InstalledSoftware(c *gin.Context) {
	data, _ := h.telemetry.InstalledSoftware(c.Param("agentId"))
	c.JSON(http.StatusOK, data)
}
