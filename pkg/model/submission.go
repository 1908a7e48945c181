package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionState string

const (
	SubmissionDraft            SubmissionState = "draft"
	SubmissionPending          SubmissionState = "pending"
	SubmissionApproved         SubmissionState = "approved"
	SubmissionRejected         SubmissionState = "rejected"
	SubmissionChangesRequested SubmissionState = "changes_requested"
	SubmissionPublished        SubmissionState = "published"
)

// ContentSubmission is one instance of content moving through an approval
// chain. Steps is the submission's own copy of the definition's steps and is
// the single source of truth for approvals; the definition is never re-read.
type ContentSubmission struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID               uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkflowID          uuid.UUID `gorm:"type:uuid;not null"`
	ContentType         string    `gorm:"not null"`
	ContentID           string
	ContentData         JSONB  `gorm:"type:jsonb"`
	SubmittedBy         string `gorm:"not null;index"`
	SubmittedByName     string
	CurrentState        SubmissionState `gorm:"type:varchar(20);not null;index"`
	CurrentStep         int             `gorm:"not null;default:1"`
	Steps               StepList        `gorm:"type:jsonb;not null"`
	FinalApprovedBy     string
	FinalRejectedBy     string
	ApprovalCompletedAt *time.Time
	PublishedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (ContentSubmission) TableName() string {
	return "content_submissions"
}

// IsTerminal reports whether no action handler may mutate the submission
// further. changes_requested is deliberately non-terminal: resubmission
// happens through a fresh submission, not by reviving this record.
func (s *ContentSubmission) IsTerminal() bool {
	switch s.CurrentState {
	case SubmissionApproved, SubmissionRejected, SubmissionPublished:
		return true
	default:
		return false
	}
}

// ActiveStep returns the step the submission is currently waiting on.
// Only meaningful while CurrentState is pending.
func (s *ContentSubmission) ActiveStep() *WorkflowStep {
	if s.CurrentStep < 1 || s.CurrentStep > len(s.Steps) {
		return nil
	}
	return &s.Steps[s.CurrentStep-1]
}
