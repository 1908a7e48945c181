package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionWorkflowCreated  = "workflow_created"
	ActionWorkflowDeleted  = "workflow_deleted"
	ActionContentSubmitted = "content_submitted"
	ActionStepApproved     = "step_approved"
	ActionContentApproved  = "content_approved"
	ActionContentRejected  = "content_rejected"
	ActionChangesRequested = "changes_requested"
	ActionContentPublished = "content_published"
)

// ActivityEntry is one append-only audit record. The workflow core only
// writes these; reporting tools query them out-of-band.
type ActivityEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID      uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_org_time"`
	UserID     string    `gorm:"not null"`
	Action     string    `gorm:"not null;index"`
	Resource   string    `gorm:"not null"`
	ResourceID string
	Details    JSONB     `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"index:idx_activity_org_time"`
}

func (ActivityEntry) TableName() string {
	return "activity_log"
}
