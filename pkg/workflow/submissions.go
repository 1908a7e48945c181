package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/metrics"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

// SubmissionService drives content through its approval chain. Every action
// runs inside the store's Transition so concurrent actions on one submission
// are linearized; across submissions there is no coordination at all.
type SubmissionService struct {
	definitions store.DefinitionStore
	submissions store.SubmissionStore
	activity    ActivityLog
	identity    IdentityResolver
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
}

func NewSubmissionService(
	definitions store.DefinitionStore,
	submissions store.SubmissionStore,
	activity ActivityLog,
	identity IdentityResolver,
	notifier Notifier,
	clock Clock,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		definitions: definitions,
		submissions: submissions,
		activity:    activity,
		identity:    identity,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
	}
}

type SubmitParams struct {
	OrgID       uuid.UUID
	WorkflowID  string
	ContentType string
	ContentID   string
	ContentData model.JSONB
	SubmittedBy string
}

// SubmitForApproval snapshots the workflow's steps into a new submission and
// enters it as pending on step 1. The definition is never re-read afterwards.
func (s *SubmissionService) SubmitForApproval(ctx context.Context, params SubmitParams) (*model.ContentSubmission, error) {
	if params.ContentType == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "contentType is required")
	}
	if params.SubmittedBy == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "submittedBy is required")
	}

	def, err := s.definitions.GetByID(ctx, params.WorkflowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, ReasonWorkflowNotFound, "workflow %s not found", params.WorkflowID)
		}
		return nil, err
	}
	if !def.IsActive {
		return nil, newError(KindNotFound, ReasonWorkflowNotFound, "workflow %s is deactivated", params.WorkflowID)
	}

	now := s.clock.Now()
	sub := &model.ContentSubmission{
		ID:           uuid.New(),
		OrgID:        params.OrgID,
		WorkflowID:   def.ID,
		ContentType:  params.ContentType,
		ContentID:    params.ContentID,
		ContentData:  params.ContentData,
		SubmittedBy:  params.SubmittedBy,
		CurrentState: model.SubmissionPending,
		CurrentStep:  1,
		Steps:        def.Steps.Clone(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if name, err := s.identity.GetDisplayName(ctx, params.SubmittedBy); err == nil {
		sub.SubmittedByName = name
	} else {
		s.logger.Debug("display name lookup failed",
			zap.String("user_id", params.SubmittedBy),
			zap.Error(err),
		)
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	metrics.SubmissionsTotal.WithLabelValues(sub.OrgID.String(), string(model.SubmissionPending)).Inc()
	s.recordActivity(ctx, sub, params.SubmittedBy, model.ActionContentSubmitted, model.JSONB{
		"workflow_id":  def.ID.String(),
		"content_type": params.ContentType,
	})
	s.notify(ctx, model.ActionContentSubmitted, sub, params.SubmittedBy)

	return sub, nil
}

// ApproveContent records one approval on the submission's current step and
// advances the step pointer or finalizes the submission once the quorum is
// met. Approving the same step twice is a conflict, not a silent no-op.
func (s *SubmissionService) ApproveContent(ctx context.Context, submissionID, userID, comment string) (*model.ContentSubmission, error) {
	var action string
	var actedStep int

	sub, err := s.submissions.Transition(ctx, submissionID, func(sub *model.ContentSubmission) (*store.SubmissionPatch, error) {
		if err := s.requirePending(sub); err != nil {
			return nil, err
		}

		step := sub.ActiveStep()
		if step == nil {
			return nil, fmt.Errorf("submission %s step pointer %d out of range", sub.ID, sub.CurrentStep)
		}
		if !step.HasApprover(userID) {
			return nil, newError(KindForbidden, ReasonNotAnApprover, "user %s is not an approver for step %d", userID, step.StepNumber)
		}
		if step.HasApproved(userID) {
			return nil, newError(KindConflict, ReasonAlreadyApproved, "user %s already approved step %d", userID, step.StepNumber)
		}
		actedStep = step.StepNumber

		now := s.clock.Now()
		step.ApprovedBy = append(step.ApprovedBy, userID)
		if comment != "" {
			step.Comments = append(step.Comments, model.StepComment{UserID: userID, Comment: comment, Timestamp: now})
		}

		patch := &store.SubmissionPatch{Steps: sub.Steps}
		switch {
		case !step.QuorumMet():
			action = model.ActionStepApproved

		case sub.CurrentStep < len(sub.Steps):
			nextStep := sub.CurrentStep + 1
			patch.CurrentStep = &nextStep
			action = model.ActionStepApproved

		default:
			approved := model.SubmissionApproved
			patch.CurrentState = &approved
			patch.FinalApprovedBy = &userID
			patch.ApprovalCompletedAt = &now
			action = model.ActionContentApproved
		}
		return patch, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(submissionID, err)
	}

	metrics.ApprovalsTotal.WithLabelValues(sub.OrgID.String()).Inc()
	if sub.CurrentState == model.SubmissionApproved {
		metrics.SubmissionsTotal.WithLabelValues(sub.OrgID.String(), string(model.SubmissionApproved)).Inc()
	}

	s.recordActivity(ctx, sub, userID, action, model.JSONB{
		"step":    actedStep,
		"comment": comment,
	})
	s.notify(ctx, action, sub, userID)

	return sub, nil
}

// RejectContent terminally rejects the submission. First rejection wins; the
// comment is mandatory so reviewers always explain a rejection.
func (s *SubmissionService) RejectContent(ctx context.Context, submissionID, userID, comment string) (*model.ContentSubmission, error) {
	if comment == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "a rejection comment is required")
	}

	sub, err := s.submissions.Transition(ctx, submissionID, func(sub *model.ContentSubmission) (*store.SubmissionPatch, error) {
		if err := s.requirePending(sub); err != nil {
			return nil, err
		}

		step := sub.ActiveStep()
		if step == nil {
			return nil, fmt.Errorf("submission %s step pointer %d out of range", sub.ID, sub.CurrentStep)
		}
		if !step.HasApprover(userID) {
			return nil, newError(KindForbidden, ReasonNotAnApprover, "user %s is not an approver for step %d", userID, step.StepNumber)
		}

		now := s.clock.Now()
		step.RejectedBy = userID
		step.Comments = append(step.Comments, model.StepComment{UserID: userID, Comment: comment, Timestamp: now})

		rejected := model.SubmissionRejected
		return &store.SubmissionPatch{
			Steps:               sub.Steps,
			CurrentState:        &rejected,
			FinalRejectedBy:     &userID,
			ApprovalCompletedAt: &now,
		}, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(submissionID, err)
	}

	metrics.SubmissionsTotal.WithLabelValues(sub.OrgID.String(), string(model.SubmissionRejected)).Inc()
	s.recordActivity(ctx, sub, userID, model.ActionContentRejected, model.JSONB{
		"step":    sub.CurrentStep,
		"comment": comment,
	})
	s.notify(ctx, model.ActionContentRejected, sub, userID)

	return sub, nil
}

// RequestChanges parks the submission without touching the step pointer or
// any accumulated approvals. It is resumable: a revised version comes back
// as a fresh SubmitForApproval, not a mutation of this record.
func (s *SubmissionService) RequestChanges(ctx context.Context, submissionID, userID, comment string) (*model.ContentSubmission, error) {
	if comment == "" {
		return nil, newError(KindValidation, ReasonMissingRequiredField, "a change-request comment is required")
	}

	sub, err := s.submissions.Transition(ctx, submissionID, func(sub *model.ContentSubmission) (*store.SubmissionPatch, error) {
		if err := s.requirePending(sub); err != nil {
			return nil, err
		}

		step := sub.ActiveStep()
		if step == nil {
			return nil, fmt.Errorf("submission %s step pointer %d out of range", sub.ID, sub.CurrentStep)
		}
		if !step.HasApprover(userID) {
			return nil, newError(KindForbidden, ReasonNotAnApprover, "user %s is not an approver for step %d", userID, step.StepNumber)
		}

		step.Comments = append(step.Comments, model.StepComment{UserID: userID, Comment: comment, Timestamp: s.clock.Now()})

		changesRequested := model.SubmissionChangesRequested
		return &store.SubmissionPatch{
			Steps:        sub.Steps,
			CurrentState: &changesRequested,
		}, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(submissionID, err)
	}

	metrics.SubmissionsTotal.WithLabelValues(sub.OrgID.String(), string(model.SubmissionChangesRequested)).Inc()
	s.recordActivity(ctx, sub, userID, model.ActionChangesRequested, model.JSONB{
		"step":    sub.CurrentStep,
		"comment": comment,
	})
	s.notify(ctx, model.ActionChangesRequested, sub, userID)

	return sub, nil
}

// MarkAsPublished confirms publication of a fully approved submission.
// Publishing anything else is an ordering bug in the caller.
func (s *SubmissionService) MarkAsPublished(ctx context.Context, submissionID, publishedBy string) error {
	sub, err := s.submissions.Transition(ctx, submissionID, func(sub *model.ContentSubmission) (*store.SubmissionPatch, error) {
		if sub.CurrentState != model.SubmissionApproved {
			return nil, newError(KindInvalidState, ReasonNotApproved, "submission %s is %s, not approved", sub.ID, sub.CurrentState)
		}

		now := s.clock.Now()
		published := model.SubmissionPublished
		return &store.SubmissionPatch{
			Steps:        sub.Steps,
			CurrentState: &published,
			PublishedAt:  &now,
		}, nil
	})
	if err != nil {
		return s.mapTransitionErr(submissionID, err)
	}

	metrics.SubmissionsTotal.WithLabelValues(sub.OrgID.String(), string(model.SubmissionPublished)).Inc()
	s.recordActivity(ctx, sub, publishedBy, model.ActionContentPublished, nil)
	s.notify(ctx, model.ActionContentPublished, sub, publishedBy)

	return nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.ContentSubmission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, ReasonSubmissionNotFound, "submission %s not found", id)
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, filter store.SubmissionFilter) ([]model.ContentSubmission, error) {
	return s.submissions.List(ctx, filter)
}

// pendingPageSize bounds each store read while walking the org's pending
// submissions. The approver filter runs in memory, so the walk must cover
// the whole pending set, not just the first page.
const pendingPageSize = 200

// GetPendingSubmissions is the "actionable by me right now" view: pending
// submissions whose current step lists userID as an approver. Derived, never
// stored.
func (s *SubmissionService) GetPendingSubmissions(ctx context.Context, userID, orgID string) ([]model.ContentSubmission, error) {
	filter := store.SubmissionFilter{
		OrgID: orgID,
		State: model.SubmissionPending,
		Limit: pendingPageSize,
	}

	var actionable []model.ContentSubmission
	for {
		pending, err := s.submissions.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		for i := range pending {
			step := pending[i].ActiveStep()
			if step != nil && step.HasApprover(userID) {
				actionable = append(actionable, pending[i])
			}
		}

		if len(pending) < pendingPageSize {
			return actionable, nil
		}
		filter.Offset += pendingPageSize
	}
}

// requirePending gates every reviewer action: terminal submissions and
// parked (changes_requested) submissions accept no further actions.
func (s *SubmissionService) requirePending(sub *model.ContentSubmission) error {
	if sub.CurrentState == model.SubmissionPending {
		return nil
	}
	return newError(KindInvalidState, ReasonTerminalSubmission, "submission %s is %s and accepts no further actions", sub.ID, sub.CurrentState)
}

func (s *SubmissionService) mapTransitionErr(submissionID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, ReasonSubmissionNotFound, "submission %s not found", submissionID)
	}
	return err
}

func (s *SubmissionService) recordActivity(ctx context.Context, sub *model.ContentSubmission, userID, action string, details model.JSONB) {
	s.activity.Record(ctx, model.ActivityEntry{
		OrgID:      sub.OrgID,
		UserID:     userID,
		Action:     action,
		Resource:   "submission",
		ResourceID: sub.ID.String(),
		Details:    details,
	})
}

func (s *SubmissionService) notify(ctx context.Context, eventType string, sub *model.ContentSubmission, actor string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, TransitionEvent{
		Type:         eventType,
		OrgID:        sub.OrgID.String(),
		SubmissionID: sub.ID.String(),
		WorkflowID:   sub.WorkflowID.String(),
		State:        sub.CurrentState,
		Step:         sub.CurrentStep,
		Actor:        actor,
	})
}
