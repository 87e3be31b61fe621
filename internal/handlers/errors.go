package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"practice-service/internal/models"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Every response carries
// a stable machine-readable code so clients can branch without parsing
// messages.
func respondError(c *gin.Context, err error) {
	var rle *service.RateLimitError
	if errors.As(err, &rle) {
		retryAfter := int(rle.RetryAfter.Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "Too many requests",
			"code":                "RATE_LIMITED",
			"retry_after_seconds": retryAfter,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrPoolExhausted):
		// Not a failure: the pool has nothing unseen left for this learner.
		// Retryable once the generator replenishes.
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "No unseen content available",
			"code":      "POOL_EXHAUSTED",
			"retryable": true,
		})
	case errors.Is(err, models.ErrSessionEnded):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Session has ended",
			"code":  "SESSION_ENDED",
		})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
			"code":  "FORBIDDEN",
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"code":  "NOT_FOUND",
		})
	case errors.Is(err, models.ErrInvalidTopic), errors.Is(err, models.ErrInvalidGrade):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"code":    "VALIDATION_FAILED",
			"details": err.Error(),
		})
	case errors.Is(err, models.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Store temporarily unavailable",
			"code":  "STORE_UNAVAILABLE",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}
