package httpHandler

import (
	"errors"
	"net/http"

	"agent-hub/entities"

	"github.com/gin-gonic/gin"
)

// respondError maps usecase errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func invalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}
