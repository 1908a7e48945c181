package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

type fakeDefinitionStore struct {
	mu   sync.Mutex
	defs map[string]model.WorkflowDefinition
}

func newFakeDefinitionStore() *fakeDefinitionStore {
	return &fakeDefinitionStore{defs: make(map[string]model.WorkflowDefinition)}
}

func (f *fakeDefinitionStore) Create(ctx context.Context, def *model.WorkflowDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defs[def.ID.String()] = *def
	return nil
}

func (f *fakeDefinitionStore) GetByID(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := def
	return &copied, nil
}

func (f *fakeDefinitionStore) ListActive(ctx context.Context, orgID string) ([]model.WorkflowDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WorkflowDefinition
	for _, def := range f.defs {
		if def.OrgID.String() == orgID && def.IsActive {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDefinitionStore) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[id]
	if !ok {
		return store.ErrNotFound
	}
	def.IsActive = false
	f.defs[id] = def
	return nil
}

// mutateStored edits the stored definition in place, bypassing the service,
// to prove submissions keep their own step copies.
func (f *fakeDefinitionStore) mutateStored(id string, mutate func(*model.WorkflowDefinition)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def := f.defs[id]
	mutate(&def)
	f.defs[id] = def
}

type fakeSubmissionStore struct {
	mu   sync.Mutex
	subs map[string]model.ContentSubmission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{subs: make(map[string]model.ContentSubmission)}
}

func copySteps(steps model.StepList) model.StepList {
	out := make(model.StepList, len(steps))
	for i, step := range steps {
		out[i] = step
		out[i].ApproverIDs = append([]string(nil), step.ApproverIDs...)
		out[i].ApprovedBy = append([]string(nil), step.ApprovedBy...)
		out[i].Comments = append([]model.StepComment(nil), step.Comments...)
	}
	return out
}

func copySubmission(sub model.ContentSubmission) model.ContentSubmission {
	sub.Steps = copySteps(sub.Steps)
	return sub
}

func (f *fakeSubmissionStore) Create(ctx context.Context, sub *model.ContentSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[sub.ID.String()] = copySubmission(*sub)
	return nil
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id string) (*model.ContentSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := copySubmission(sub)
	return &copied, nil
}

func (f *fakeSubmissionStore) List(ctx context.Context, filter store.SubmissionFilter) ([]model.ContentSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ContentSubmission
	for _, sub := range f.subs {
		if filter.OrgID != "" && sub.OrgID.String() != filter.OrgID {
			continue
		}
		if filter.State != "" && sub.CurrentState != filter.State {
			continue
		}
		if filter.SubmittedBy != "" && sub.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if filter.ContentType != "" && sub.ContentType != filter.ContentType {
			continue
		}
		out = append(out, copySubmission(sub))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	// Same paging contract as the postgres repository: an unset limit is
	// replaced by the default page of 50, never "everything".
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Transition mirrors the postgres repository: the callback runs on a private
// copy under the store lock, and nothing is persisted if it errors.
func (f *fakeSubmissionStore) Transition(ctx context.Context, id string, apply func(*model.ContentSubmission) (*store.SubmissionPatch, error)) (*model.ContentSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.subs[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	working := copySubmission(stored)
	patch, err := apply(&working)
	if err != nil {
		return nil, err
	}

	working.Steps = patch.Steps
	if patch.CurrentState != nil {
		working.CurrentState = *patch.CurrentState
	}
	if patch.CurrentStep != nil {
		working.CurrentStep = *patch.CurrentStep
	}
	if patch.FinalApprovedBy != nil {
		working.FinalApprovedBy = *patch.FinalApprovedBy
	}
	if patch.FinalRejectedBy != nil {
		working.FinalRejectedBy = *patch.FinalRejectedBy
	}
	if patch.ApprovalCompletedAt != nil {
		working.ApprovalCompletedAt = patch.ApprovalCompletedAt
	}
	if patch.PublishedAt != nil {
		working.PublishedAt = patch.PublishedAt
	}

	f.subs[id] = copySubmission(working)
	result := copySubmission(working)
	return &result, nil
}

type fakeOracle struct {
	activeMembers map[string]bool
	approvers     map[string]bool
}

func newFakeOracle(members ...string) *fakeOracle {
	oracle := &fakeOracle{
		activeMembers: make(map[string]bool),
		approvers:     make(map[string]bool),
	}
	for _, member := range members {
		oracle.activeMembers[member] = true
		oracle.approvers[member] = true
	}
	return oracle
}

func (f *fakeOracle) IsActiveMember(ctx context.Context, userID, orgID string) (bool, error) {
	return f.activeMembers[userID], nil
}

func (f *fakeOracle) HasCapability(ctx context.Context, userID, orgID, capability string) (bool, error) {
	return f.approvers[userID], nil
}

type fakeIdentity struct {
	names map[string]string
}

func (f *fakeIdentity) GetDisplayName(ctx context.Context, userID string) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", fmt.Errorf("unknown user %s", userID)
	}
	return name, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)
	return f.now
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []model.ActivityEntry
}

func (f *fakeActivity) Record(ctx context.Context, entry model.ActivityEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeActivity) lastAction() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

type fakeNotifier struct {
	mu        sync.Mutex
	events    []TransitionEvent
	defEvents []DefinitionEvent
}

func (f *fakeNotifier) Notify(ctx context.Context, event TransitionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) NotifyDefinition(ctx context.Context, event DefinitionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defEvents = append(f.defEvents, event)
}
