package model

import (
	"encoding/json"
	"testing"
)

func TestStepListCloneIsIndependent(t *testing.T) {
	original := StepList{
		{
			StepNumber:        1,
			ApproverIDs:       []string{"alice", "bob"},
			RequiredApprovals: 2,
			ApprovedBy:        []string{"alice"},
			Comments:          []StepComment{{UserID: "alice", Comment: "looks good"}},
		},
	}

	cloned := original.Clone()

	if len(cloned) != 1 {
		t.Fatalf("expected 1 step, got %d", len(cloned))
	}
	if len(cloned[0].ApprovedBy) != 0 {
		t.Fatalf("expected cloned step to start with no approvals, got %v", cloned[0].ApprovedBy)
	}
	if len(cloned[0].Comments) != 0 {
		t.Fatalf("expected cloned step to start with no comments, got %v", cloned[0].Comments)
	}

	cloned[0].ApproverIDs[0] = "mallory"
	if original[0].ApproverIDs[0] != "alice" {
		t.Fatalf("clone shares approver backing array with original")
	}

	cloned[0].ApprovedBy = append(cloned[0].ApprovedBy, "bob")
	if len(original[0].ApprovedBy) != 1 || original[0].ApprovedBy[0] != "alice" {
		t.Fatalf("mutating clone changed original approvals: %v", original[0].ApprovedBy)
	}
}

func TestStepListValueAndScan(t *testing.T) {
	original := StepList{
		{StepNumber: 1, ApproverIDs: []string{"alice"}, RequiredApprovals: 1},
		{StepNumber: 2, ApproverIDs: []string{"bob", "carol"}, RequiredApprovals: 2},
	}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	data, ok := value.([]byte)
	if !ok {
		t.Fatalf("expected []byte value, got %T", value)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal value error: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 encoded steps, got %d", len(decoded))
	}

	var scanned StepList
	if err := scanned.Scan(data); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(scanned) != 2 || scanned[1].RequiredApprovals != 2 {
		t.Fatalf("unexpected scanned steps: %+v", scanned)
	}
}

func TestStepHelpers(t *testing.T) {
	step := WorkflowStep{
		StepNumber:        1,
		ApproverIDs:       []string{"alice", "bob"},
		RequiredApprovals: 2,
		ApprovedBy:        []string{"alice"},
	}

	if !step.HasApprover("alice") {
		t.Fatalf("expected alice to be an approver")
	}
	if step.HasApprover("mallory") {
		t.Fatalf("mallory should not be an approver")
	}
	if !step.HasApproved("alice") {
		t.Fatalf("expected alice to have approved")
	}
	if step.HasApproved("bob") {
		t.Fatalf("bob has not approved yet")
	}
	if step.QuorumMet() {
		t.Fatalf("quorum should not be met with 1 of 2 approvals")
	}

	step.ApprovedBy = append(step.ApprovedBy, "bob")
	if !step.QuorumMet() {
		t.Fatalf("quorum should be met with 2 of 2 approvals")
	}
}

func TestSubmissionTerminalStates(t *testing.T) {
	cases := []struct {
		state    SubmissionState
		terminal bool
	}{
		{SubmissionPending, false},
		{SubmissionChangesRequested, false},
		{SubmissionApproved, true},
		{SubmissionRejected, true},
		{SubmissionPublished, true},
	}

	for _, tc := range cases {
		sub := ContentSubmission{CurrentState: tc.state}
		if sub.IsTerminal() != tc.terminal {
			t.Fatalf("state %s: expected terminal=%v", tc.state, tc.terminal)
		}
	}
}

func TestActiveStepBounds(t *testing.T) {
	sub := ContentSubmission{
		CurrentStep: 2,
		Steps: StepList{
			{StepNumber: 1, ApproverIDs: []string{"alice"}, RequiredApprovals: 1},
			{StepNumber: 2, ApproverIDs: []string{"bob"}, RequiredApprovals: 1},
		},
	}

	step := sub.ActiveStep()
	if step == nil || step.StepNumber != 2 {
		t.Fatalf("expected step 2, got %+v", step)
	}

	sub.CurrentStep = 3
	if sub.ActiveStep() != nil {
		t.Fatalf("expected nil step when pointer is out of range")
	}
}
