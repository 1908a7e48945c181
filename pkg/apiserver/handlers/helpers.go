package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/workflow"
)

const timeRFC3339Nano = time.RFC3339Nano

// respondError maps the workflow error taxonomy onto HTTP statuses; anything
// outside it is an infrastructure failure and stays opaque to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch workflow.KindOf(err) {
	case workflow.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case workflow.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case workflow.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case workflow.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case workflow.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseLimit(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseOffset(value string) int {
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func formatTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(timeRFC3339Nano)
	return &formatted
}
