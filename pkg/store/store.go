package store

import (
	"context"
	"errors"
	"time"

	"github.com/stagegate/stagegate/pkg/model"
)

// ErrNotFound is returned by any store when the requested document does not
// exist. Callers translate it into their own error taxonomy.
var ErrNotFound = errors.New("not found")

// DefinitionStore persists workflow definitions. Definitions are never
// physically deleted; Deactivate soft-deletes so submissions that copied
// their steps stay valid.
type DefinitionStore interface {
	Create(ctx context.Context, def *model.WorkflowDefinition) error
	GetByID(ctx context.Context, id string) (*model.WorkflowDefinition, error)
	ListActive(ctx context.Context, orgID string) ([]model.WorkflowDefinition, error)
	Deactivate(ctx context.Context, id string) error
}

// SubmissionPatch is the narrow set of fields an action handler is allowed to
// change in one transition. Nil pointers mean "leave unchanged"; Steps is
// always written since every action mutates the active step's copy.
type SubmissionPatch struct {
	Steps               model.StepList
	CurrentState        *model.SubmissionState
	CurrentStep         *int
	FinalApprovedBy     *string
	FinalRejectedBy     *string
	ApprovalCompletedAt *time.Time
	PublishedAt         *time.Time
}

// SubmissionFilter narrows ListSubmissions. Zero values are ignored.
type SubmissionFilter struct {
	OrgID       string
	State       model.SubmissionState
	SubmittedBy string
	ContentType string
	Limit       int
	Offset      int
}

// SubmissionStore persists content submissions. Transition is the only write
// path after creation: it loads the submission under a per-row lock, applies
// the callback, and persists the returned patch in the same transaction, so
// concurrent actions on one submission are linearized. A callback error
// aborts the transaction with nothing written.
type SubmissionStore interface {
	Create(ctx context.Context, sub *model.ContentSubmission) error
	GetByID(ctx context.Context, id string) (*model.ContentSubmission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.ContentSubmission, error)
	Transition(ctx context.Context, id string, apply func(*model.ContentSubmission) (*SubmissionPatch, error)) (*model.ContentSubmission, error)
}

// ActivityStore is the append-only audit sink.
type ActivityStore interface {
	Insert(ctx context.Context, entry *model.ActivityEntry) error
}

// OutboxStore feeds the notification relay.
type OutboxStore interface {
	Insert(ctx context.Context, event *model.NotificationEvent) error
	ListPending(ctx context.Context, limit int) ([]model.NotificationEvent, error)
	MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, eventID string) error
}
