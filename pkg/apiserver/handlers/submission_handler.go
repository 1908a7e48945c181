package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/apiserver/middleware"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
	"github.com/stagegate/stagegate/pkg/workflow"
)

type SubmissionHandler struct {
	submissions *workflow.SubmissionService
	logger      *zap.Logger
}

func NewSubmissionHandler(submissions *workflow.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, logger: logger}
}

type submitRequest struct {
	WorkflowID  string                 `json:"workflow_id" binding:"required"`
	ContentType string                 `json:"content_type" binding:"required"`
	ContentID   string                 `json:"content_id"`
	ContentData map[string]interface{} `json:"content_data"`
}

type actionRequest struct {
	Comment string `json:"comment"`
}

type stepResponse struct {
	StepNumber        int                 `json:"step_number"`
	ApproverIDs       []string            `json:"approver_ids"`
	RequiredApprovals int                 `json:"required_approvals"`
	ApprovedBy        []string            `json:"approved_by,omitempty"`
	RejectedBy        string              `json:"rejected_by,omitempty"`
	Comments          []model.StepComment `json:"comments,omitempty"`
}

type submissionResponse struct {
	ID                  string         `json:"id"`
	OrgID               string         `json:"org_id"`
	WorkflowID          string         `json:"workflow_id"`
	ContentType         string         `json:"content_type"`
	ContentID           string         `json:"content_id,omitempty"`
	ContentData         model.JSONB    `json:"content_data,omitempty"`
	SubmittedBy         string         `json:"submitted_by"`
	SubmittedByName     string         `json:"submitted_by_name,omitempty"`
	CurrentState        string         `json:"current_state"`
	CurrentStep         int            `json:"current_step"`
	Steps               []stepResponse `json:"steps"`
	FinalApprovedBy     string         `json:"final_approved_by,omitempty"`
	FinalRejectedBy     string         `json:"final_rejected_by,omitempty"`
	ApprovalCompletedAt *string        `json:"approval_completed_at,omitempty"`
	PublishedAt         *string        `json:"published_at,omitempty"`
	CreatedAt           string         `json:"created_at"`
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	orgID, err := uuid.Parse(c.GetString(middleware.ContextOrgID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid org_id"})
		return
	}

	sub, err := h.submissions.SubmitForApproval(c.Request.Context(), workflow.SubmitParams{
		OrgID:       orgID,
		WorkflowID:  req.WorkflowID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ContentData: model.JSONB(req.ContentData),
		SubmittedBy: c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, mapSubmission(sub))
}

func (h *SubmissionHandler) Approve(c *gin.Context) {
	h.action(c, func(id, userID, comment string) (*model.ContentSubmission, error) {
		return h.submissions.ApproveContent(c.Request.Context(), id, userID, comment)
	}, false)
}

func (h *SubmissionHandler) Reject(c *gin.Context) {
	h.action(c, func(id, userID, comment string) (*model.ContentSubmission, error) {
		return h.submissions.RejectContent(c.Request.Context(), id, userID, comment)
	}, true)
}

func (h *SubmissionHandler) RequestChanges(c *gin.Context) {
	h.action(c, func(id, userID, comment string) (*model.ContentSubmission, error) {
		return h.submissions.RequestChanges(c.Request.Context(), id, userID, comment)
	}, true)
}

func (h *SubmissionHandler) action(c *gin.Context, call func(id, userID, comment string) (*model.ContentSubmission, error), commentRequired bool) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil && commentRequired {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	sub, err := call(submissionID.String(), c.GetString(middleware.ContextUserID), req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, mapSubmission(sub))
}

func (h *SubmissionHandler) Publish(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if err := h.submissions.MarkAsPublished(c.Request.Context(), submissionID.String(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "published"})
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	sub, err := h.submissions.GetSubmission(c.Request.Context(), submissionID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, mapSubmission(sub))
}

func (h *SubmissionHandler) List(c *gin.Context) {
	filter := store.SubmissionFilter{
		OrgID:       c.GetString(middleware.ContextOrgID),
		State:       model.SubmissionState(c.Query("state")),
		SubmittedBy: c.Query("submitted_by"),
		ContentType: c.Query("content_type"),
		Limit:       parseLimit(c.Query("limit"), 50),
		Offset:      parseOffset(c.Query("offset")),
	}

	subs, err := h.submissions.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]submissionResponse, 0, len(subs))
	for i := range subs {
		response = append(response, mapSubmission(&subs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"submissions": response})
}

// ListPending returns the caller's actionable queue: pending submissions
// whose current step lists them as an approver.
func (h *SubmissionHandler) ListPending(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	orgID := c.GetString(middleware.ContextOrgID)

	subs, err := h.submissions.GetPendingSubmissions(c.Request.Context(), userID, orgID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]submissionResponse, 0, len(subs))
	for i := range subs {
		response = append(response, mapSubmission(&subs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"submissions": response})
}

func mapSubmission(sub *model.ContentSubmission) submissionResponse {
	steps := make([]stepResponse, 0, len(sub.Steps))
	for _, step := range sub.Steps {
		steps = append(steps, stepResponse{
			StepNumber:        step.StepNumber,
			ApproverIDs:       step.ApproverIDs,
			RequiredApprovals: step.RequiredApprovals,
			ApprovedBy:        step.ApprovedBy,
			RejectedBy:        step.RejectedBy,
			Comments:          step.Comments,
		})
	}

	return submissionResponse{
		ID:                  sub.ID.String(),
		OrgID:               sub.OrgID.String(),
		WorkflowID:          sub.WorkflowID.String(),
		ContentType:         sub.ContentType,
		ContentID:           sub.ContentID,
		ContentData:         sub.ContentData,
		SubmittedBy:         sub.SubmittedBy,
		SubmittedByName:     sub.SubmittedByName,
		CurrentState:        string(sub.CurrentState),
		CurrentStep:         sub.CurrentStep,
		Steps:               steps,
		FinalApprovedBy:     sub.FinalApprovedBy,
		FinalRejectedBy:     sub.FinalRejectedBy,
		ApprovalCompletedAt: formatTime(sub.ApprovalCompletedAt),
		PublishedAt:         formatTime(sub.PublishedAt),
		CreatedAt:           sub.CreatedAt.UTC().Format(timeRFC3339Nano),
	}
}
