package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

// WorkflowService manages reusable approval-chain templates. Validation is
// fail-fast: nothing is written until every approver in every group has
// cleared the permission oracle.
type WorkflowService struct {
	definitions store.DefinitionStore
	oracle      PermissionOracle
	activity    ActivityLog
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
}

func NewWorkflowService(
	definitions store.DefinitionStore,
	oracle PermissionOracle,
	activity ActivityLog,
	notifier Notifier,
	clock Clock,
	logger *zap.Logger,
) *WorkflowService {
	return &WorkflowService{
		definitions: definitions,
		oracle:      oracle,
		activity:    activity,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
	}
}

type CreateWorkflowParams struct {
	OrgID          uuid.UUID
	Name           string
	Description    string
	Type           model.WorkflowType
	ApproverGroups [][]string
	CreatedBy      string
}

func (s *WorkflowService) CreateWorkflow(ctx context.Context, params CreateWorkflowParams) (*model.WorkflowDefinition, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "workflow name is required")
	}
	if params.CreatedBy == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "createdBy is required")
	}

	switch params.Type {
	case model.WorkflowSimple, model.WorkflowSequential, model.WorkflowParallel:
	default:
		return nil, newError(KindValidation, ReasonInvalidWorkflowType, "unknown workflow type %q", params.Type)
	}

	if len(params.ApproverGroups) == 0 {
		return nil, newError(KindValidation, ReasonEmptyApproverGroup, "at least one approver group is required")
	}
	if params.Type == model.WorkflowSimple && len(params.ApproverGroups) != 1 {
		return nil, newError(KindValidation, ReasonInvalidWorkflowType, "simple workflows have exactly one step, got %d", len(params.ApproverGroups))
	}

	steps := make(model.StepList, 0, len(params.ApproverGroups))
	for i, group := range params.ApproverGroups {
		// Groups are sets. Dedupe before deriving the quorum: a duplicate
		// entry in a parallel group would demand more approvals than there
		// are distinct approvers, leaving the submission stuck at pending.
		approvers := dedupeApprovers(group)
		if len(approvers) == 0 {
			return nil, newError(KindValidation, ReasonEmptyApproverGroup, "step %d has no approvers", i+1)
		}

		for _, approverID := range approvers {
			if err := s.checkApprover(ctx, approverID, params.OrgID.String()); err != nil {
				return nil, err
			}
		}

		// Quorum is derived, never caller-supplied: a parallel step needs
		// every listed approver, any other type needs exactly one.
		required := 1
		if params.Type == model.WorkflowParallel {
			required = len(approvers)
		}

		steps = append(steps, model.WorkflowStep{
			StepNumber:        i + 1,
			ApproverIDs:       approvers,
			RequiredApprovals: required,
		})
	}

	now := s.clock.Now()
	def := &model.WorkflowDefinition{
		ID:          uuid.New(),
		OrgID:       params.OrgID,
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		Steps:       steps,
		IsActive:    true,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.definitions.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create workflow definition: %w", err)
	}

	s.activity.Record(ctx, model.ActivityEntry{
		OrgID:      def.OrgID,
		UserID:     params.CreatedBy,
		Action:     model.ActionWorkflowCreated,
		Resource:   "workflow",
		ResourceID: def.ID.String(),
		Details:    model.JSONB{"name": def.Name, "type": string(def.Type), "steps": len(def.Steps)},
	})
	s.notifyDefinition(ctx, model.ActionWorkflowCreated, def, params.CreatedBy)

	return def, nil
}

func (s *WorkflowService) notifyDefinition(ctx context.Context, eventType string, def *model.WorkflowDefinition, actor string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyDefinition(ctx, DefinitionEvent{
		Type:       eventType,
		OrgID:      def.OrgID.String(),
		WorkflowID: def.ID.String(),
		Actor:      actor,
	})
}

func dedupeApprovers(group []string) []string {
	seen := make(map[string]struct{}, len(group))
	out := make([]string, 0, len(group))
	for _, id := range group {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *WorkflowService) checkApprover(ctx context.Context, userID, orgID string) error {
	active, err := s.oracle.IsActiveMember(ctx, userID, orgID)
	if err != nil {
		return fmt.Errorf("permission check failed for %s: %w", userID, err)
	}
	if !active {
		return newError(KindValidation, ReasonUnauthorizedApprover, "user %s is not an active member of the organization", userID)
	}

	allowed, err := s.oracle.HasCapability(ctx, userID, orgID, model.CapabilityApproveContent)
	if err != nil {
		return fmt.Errorf("capability check failed for %s: %w", userID, err)
	}
	if !allowed {
		return newError(KindValidation, ReasonUnauthorizedApprover, "user %s may not approve content", userID)
	}
	return nil
}

func (s *WorkflowService) GetWorkflow(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	def, err := s.definitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, ReasonWorkflowNotFound, "workflow %s not found", id)
		}
		return nil, err
	}
	return def, nil
}

// ListWorkflows returns the organization's active definitions, newest first.
func (s *WorkflowService) ListWorkflows(ctx context.Context, orgID string) ([]model.WorkflowDefinition, error) {
	return s.definitions.ListActive(ctx, orgID)
}

// DeactivateWorkflow soft-deletes a definition. Submissions that already
// copied its steps are unaffected.
func (s *WorkflowService) DeactivateWorkflow(ctx context.Context, id, actorID string) error {
	def, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}

	if err := s.definitions.Deactivate(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, ReasonWorkflowNotFound, "workflow %s not found", id)
		}
		return err
	}

	s.activity.Record(ctx, model.ActivityEntry{
		OrgID:      def.OrgID,
		UserID:     actorID,
		Action:     model.ActionWorkflowDeleted,
		Resource:   "workflow",
		ResourceID: id,
		Details:    model.JSONB{"name": def.Name},
	})
	s.notifyDefinition(ctx, model.ActionWorkflowDeleted, def, actorID)

	return nil
}
