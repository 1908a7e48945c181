package workflow

import (
	"context"
	"time"

	"github.com/stagegate/stagegate/pkg/model"
)

// PermissionOracle answers capability questions about users. It is an
// external collaborator; the core only consumes the answers.
type PermissionOracle interface {
	IsActiveMember(ctx context.Context, userID, orgID string) (bool, error)
	HasCapability(ctx context.Context, userID, orgID, capability string) (bool, error)
}

// IdentityResolver supplies display names for denormalization at submit
// time. Resolution failures are non-fatal; the field is left unset.
type IdentityResolver interface {
	GetDisplayName(ctx context.Context, userID string) (string, error)
}

// Clock is injected so transition timestamps are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ActivityLog is a fire-and-forget audit sink. Implementations must swallow
// their own failures; a state transition never rolls back because an audit
// write failed.
type ActivityLog interface {
	Record(ctx context.Context, entry model.ActivityEntry)
}

// TransitionEvent describes a committed state change for downstream
// notification collaborators.
type TransitionEvent struct {
	Type         string
	OrgID        string
	SubmissionID string
	WorkflowID   string
	State        model.SubmissionState
	Step         int
	Actor        string
}

// DefinitionEvent describes a workflow definition lifecycle change
// (created, deactivated).
type DefinitionEvent struct {
	Type       string
	OrgID      string
	WorkflowID string
	Actor      string
}

// Notifier fans committed changes out to external consumers.
// Fire-and-forget, same contract as ActivityLog.
type Notifier interface {
	Notify(ctx context.Context, event TransitionEvent)
	NotifyDefinition(ctx context.Context, event DefinitionEvent)
}
