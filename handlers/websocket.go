package handlers

import (
	"net/http"

	"agent-hub/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// HubHandler binds the real-time push channel to HTTP.
type HubHandler struct {
	mgr *ws.Manager
	log zerolog.Logger
}

func NewHubHandler(mgr *ws.Manager, log zerolog.Logger) *HubHandler {
	return &HubHandler{mgr: mgr, log: log}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Serve upgrades to websocket and keeps the subscription open until the
// peer goes away. Inbound frames are read only to detect disconnects.
// GET /adminHub, GET /agentHub
func (h *HubHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	channel := c.FullPath()
	id := h.mgr.Register(conn, channel)
	h.log.Info().Str("subscriber", id).Str("channel", channel).Msg("hub subscriber connected")
	defer func() {
		h.mgr.Unregister(id)
		h.log.Info().Str("subscriber", id).Msg("hub subscriber disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("subscriber", id).Msg("hub read error")
			}
			return
		}
	}
}

// GET /api/hub/subscribers
func (h *HubHandler) Subscribers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subscribers": h.mgr.List(), "count": h.mgr.Count()})
}
