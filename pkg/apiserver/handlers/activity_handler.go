package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/apiserver/middleware"
	"github.com/stagegate/stagegate/pkg/model"
)

// ActivityReader is the reporting view over the audit trail. The workflow
// core only appends; this endpoint exists for outside reporting tools.
type ActivityReader interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]model.ActivityEntry, error)
}

type ActivityHandler struct {
	activities ActivityReader
	logger     *zap.Logger
}

func NewActivityHandler(activities ActivityReader, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

type activityResponse struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Action     string      `json:"action"`
	Resource   string      `json:"resource"`
	ResourceID string      `json:"resource_id,omitempty"`
	Details    model.JSONB `json:"details,omitempty"`
	CreatedAt  string      `json:"created_at"`
}

func (h *ActivityHandler) List(c *gin.Context) {
	orgID := c.GetString(middleware.ContextOrgID)
	limit := parseLimit(c.Query("limit"), 50)
	offset := parseOffset(c.Query("offset"))

	entries, err := h.activities.ListByOrg(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}

	response := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, activityResponse{
			ID:         entry.ID.String(),
			UserID:     entry.UserID,
			Action:     entry.Action,
			Resource:   entry.Resource,
			ResourceID: entry.ResourceID,
			Details:    entry.Details,
			CreatedAt:  entry.CreatedAt.UTC().Format(timeRFC3339Nano),
		})
	}

	c.JSON(http.StatusOK, gin.H{"activity": response})
}
