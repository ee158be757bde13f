package handlers

import (
	"net/http"

	"agent-hub/cache"
	"agent-hub/services"

	"github.com/gin-gonic/gin"
)

// CacheHandler exposes the metrics history cache. archiver is nil when no
// archive database is configured.
type CacheHandler struct {
	cache    *cache.MetricsCache
	archiver *services.MetricsArchiver
}

func NewCacheHandler(c *cache.MetricsCache, archiver *services.MetricsArchiver) *CacheHandler {
	return &CacheHandler{cache: c, archiver: archiver}
}

// POST /api/cache/process
func (h *CacheHandler) ProcessCache(c *gin.Context) {
	if h.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics archive is not configured"})
		return
	}
	n, err := h.archiver.Flush()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "archive failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed", "archived": n})
}

// GET /api/cache/stats
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"stats":          h.cache.GetCacheStats(),
		"archiveEnabled": h.archiver != nil,
	})
}
