package httpHandler

import (
	"net/http"

	"agent-hub/entities"
	"agent-hub/usecases"

	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	dispatch *usecases.DispatchUseCase
}

func NewCommandHandler(uc *usecases.DispatchUseCase) *CommandHandler {
	return &CommandHandler{dispatch: uc}
}

// POST /api/Command, POST /api/Command/queue
// Queue a command for its target agent.
func (h *CommandHandler) Queue(c *gin.Context) {
	var cmd entities.CommandRequest
	if err := c.ShouldBindJSON(&cmd); err != nil {
		invalidBody(c, err)
		return
	}
	id, err := h.dispatch.Submit(&cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commandId": id})
}

// GET /api/Command/pending/:agentId
// Agents drain their queue. Delivered commands are not redelivered.
func (h *CommandHandler) Pending(c *gin.Context) {
	cmds, err := h.dispatch.Poll(c.Param("agentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmds)
}

// GET /api/Command/:commandId
// 200 with the stored record, 202 when queued without a record, 404 when unknown.
func (h *CommandHandler) Status(c *gin.Context) {
	commandID := c.Param("commandId")
	st := h.dispatch.GetStatus(commandID)
	switch {
	case st.Response != nil:
		c.JSON(http.StatusOK, st.Response)
	case st.Kind == usecases.StatusStillPending:
		c.JSON(http.StatusAccepted, gin.H{"commandId": commandID, "status": entities.StatusPending})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "command not found"})
	}
}

// POST /api/Command/result
// Agents report the outcome of a command.
func (h *CommandHandler) Result(c *gin.Context) {
	var resp entities.CommandResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		invalidBody(c, err)
		return
	}
	if _, err := h.dispatch.ReportResult(&resp); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
