package http

import (
	"errors"
	"net/http"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy to one status code each and keeps
// every body a short human-readable message, never a stack trace.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var (
		validationErr *entities.ValidationError
		authErr       *entities.AuthError
		conflictErr   *entities.ConflictError
		upstreamErr   *entities.UpstreamError
		notFoundErr   *entities.NotFoundError
		rateErr       *entities.RateLimitError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &authErr):
		status := http.StatusUnauthorized
		if authErr.Forbidden {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": authErr.Msg})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Msg})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Msg})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateErr.Msg})
	case errors.As(err, &upstreamErr):
		log.Error("upstream failure", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Msg})
	default:
		log.Error("unhandled server error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}
