// Package domain holds helpers shared by the HTTP handlers of every
// domain package.
package domain

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
)

// RespondError maps the service error chain to an HTTP status and writes a
// JSON error body. Internal errors are logged with their full chain but
// never leaked to the client.
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, models.ErrCloningDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "cloning is disabled for this card"})
	case errors.Is(err, models.ErrCardInactive):
		c.JSON(http.StatusGone, gin.H{"error": "card is no longer active"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict, retry the request"})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
