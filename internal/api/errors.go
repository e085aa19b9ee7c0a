package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"residence-occupancy-backend/internal/occupancy"
)

// writeError maps domain errors onto HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var ce *occupancy.ConflictError
	var te *occupancy.TransitionError

	switch {
	case errors.As(err, &ce):
		body := gin.H{"error": err.Error(), "reason": ce.Reason, "conflict": string(ce.Cause)}
		if ce.OccupantID != "" {
			body["occupantId"] = ce.OccupantID
		}
		if len(ce.Windows) > 0 {
			windows := make([]*windowDTO, len(ce.Windows))
			for i := range ce.Windows {
				windows[i] = windowFromDomain(&ce.Windows[i])
			}
			body["conflictingWindows"] = windows
		}
		c.AbortWithStatusJSON(http.StatusConflict, body)

	case errors.Is(err, occupancy.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, occupancy.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.As(err, &te):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"from":  te.From,
			"to":    te.To,
		})

	case errors.Is(err, occupancy.ErrStaleState):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, occupancy.ErrRepository):
		h.log.WithError(err).WithField("path", c.FullPath()).Error("Repository failure")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":     "storage is temporarily unavailable",
			"retryable": true,
		})

	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("Unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
