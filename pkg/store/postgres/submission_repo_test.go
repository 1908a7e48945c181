package postgres

import (
	"testing"
	"time"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

func TestPatchChangesOnlyTouchesSetFields(t *testing.T) {
	steps := model.StepList{{StepNumber: 1, ApproverIDs: []string{"alice"}, RequiredApprovals: 1}}

	changes := patchChanges(&store.SubmissionPatch{Steps: steps})

	if _, ok := changes["steps"]; !ok {
		t.Fatalf("steps must always be written")
	}
	if _, ok := changes["updated_at"]; !ok {
		t.Fatalf("updated_at must always be written")
	}
	for _, column := range []string{"current_state", "current_step", "final_approved_by", "final_rejected_by", "approval_completed_at", "published_at"} {
		if _, ok := changes[column]; ok {
			t.Fatalf("unset patch field %s leaked into updates", column)
		}
	}
}

func TestPatchChangesFullTransition(t *testing.T) {
	approved := model.SubmissionApproved
	user := "bob"
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	changes := patchChanges(&store.SubmissionPatch{
		Steps:               model.StepList{},
		CurrentState:        &approved,
		FinalApprovedBy:     &user,
		ApprovalCompletedAt: &now,
	})

	if changes["current_state"] != approved {
		t.Fatalf("expected current_state %s, got %v", approved, changes["current_state"])
	}
	if changes["final_approved_by"] != user {
		t.Fatalf("expected final_approved_by %s, got %v", user, changes["final_approved_by"])
	}
	if changes["approval_completed_at"] != &now {
		t.Fatalf("expected approval_completed_at pointer")
	}
}

func TestApplyPatchMirrorsChanges(t *testing.T) {
	rejected := model.SubmissionRejected
	user := "alice"
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sub := model.ContentSubmission{
		CurrentState: model.SubmissionPending,
		CurrentStep:  1,
	}

	applyPatch(&sub, &store.SubmissionPatch{
		Steps:               model.StepList{{StepNumber: 1, RejectedBy: user}},
		CurrentState:        &rejected,
		FinalRejectedBy:     &user,
		ApprovalCompletedAt: &now,
	})

	if sub.CurrentState != rejected {
		t.Fatalf("expected state rejected, got %s", sub.CurrentState)
	}
	if sub.CurrentStep != 1 {
		t.Fatalf("unset step must stay unchanged, got %d", sub.CurrentStep)
	}
	if sub.FinalRejectedBy != user || sub.FinalApprovedBy != "" {
		t.Fatalf("rejection attribution wrong: %q / %q", sub.FinalRejectedBy, sub.FinalApprovedBy)
	}
	if sub.Steps[0].RejectedBy != user {
		t.Fatalf("steps not applied")
	}
}
