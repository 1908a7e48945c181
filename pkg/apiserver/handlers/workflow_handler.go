package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/apiserver/middleware"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/workflow"
)

type WorkflowHandler struct {
	workflows *workflow.WorkflowService
	logger    *zap.Logger
}

func NewWorkflowHandler(workflows *workflow.WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, logger: logger}
}

type workflowCreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	Type           string     `json:"type" binding:"required"`
	ApproverGroups [][]string `json:"approver_groups" binding:"required"`
}

type workflowStepResponse struct {
	StepNumber        int      `json:"step_number"`
	ApproverIDs       []string `json:"approver_ids"`
	RequiredApprovals int      `json:"required_approvals"`
}

type workflowResponse struct {
	ID          string                 `json:"id"`
	OrgID       string                 `json:"org_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Type        string                 `json:"type"`
	Steps       []workflowStepResponse `json:"steps"`
	IsActive    bool                   `json:"is_active"`
	CreatedBy   string                 `json:"created_by"`
	CreatedAt   string                 `json:"created_at"`
}

func (h *WorkflowHandler) Create(c *gin.Context) {
	var req workflowCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	orgID, err := uuid.Parse(c.GetString(middleware.ContextOrgID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid org_id"})
		return
	}

	def, err := h.workflows.CreateWorkflow(c.Request.Context(), workflow.CreateWorkflowParams{
		OrgID:          orgID,
		Name:           req.Name,
		Description:    req.Description,
		Type:           model.WorkflowType(strings.ToLower(req.Type)),
		ApproverGroups: req.ApproverGroups,
		CreatedBy:      c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, mapWorkflow(def))
}

func (h *WorkflowHandler) List(c *gin.Context) {
	orgID := c.GetString(middleware.ContextOrgID)
	if orgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "org_id is required"})
		return
	}

	defs, err := h.workflows.ListWorkflows(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]workflowResponse, 0, len(defs))
	for i := range defs {
		response = append(response, mapWorkflow(&defs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"workflows": response})
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	workflowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	def, err := h.workflows.GetWorkflow(c.Request.Context(), workflowID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, mapWorkflow(def))
}

func (h *WorkflowHandler) Deactivate(c *gin.Context) {
	workflowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	actor := c.GetString(middleware.ContextUserID)
	if err := h.workflows.DeactivateWorkflow(c.Request.Context(), workflowID.String(), actor); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func mapWorkflow(def *model.WorkflowDefinition) workflowResponse {
	steps := make([]workflowStepResponse, 0, len(def.Steps))
	for _, step := range def.Steps {
		steps = append(steps, workflowStepResponse{
			StepNumber:        step.StepNumber,
			ApproverIDs:       step.ApproverIDs,
			RequiredApprovals: step.RequiredApprovals,
		})
	}

	return workflowResponse{
		ID:          def.ID.String(),
		OrgID:       def.OrgID.String(),
		Name:        def.Name,
		Description: def.Description,
		Type:        string(def.Type),
		Steps:       steps,
		IsActive:    def.IsActive,
		CreatedBy:   def.CreatedBy,
		CreatedAt:   def.CreatedAt.UTC().Format(timeRFC3339Nano),
	}
}
