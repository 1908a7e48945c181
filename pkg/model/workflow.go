package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WorkflowType string

const (
	WorkflowSimple     WorkflowType = "simple"
	WorkflowSequential WorkflowType = "sequential"
	WorkflowParallel   WorkflowType = "parallel"
)

// WorkflowDefinition is a named, reusable approval-chain template. Once a
// submission references it the definition is read-only: submissions carry
// their own copy of Steps, so later edits never reach in-flight approvals.
type WorkflowDefinition struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	Type        WorkflowType `gorm:"type:varchar(20);not null"`
	Steps       StepList     `gorm:"type:jsonb;not null"`
	IsActive    bool         `gorm:"not null;default:true;index"`
	CreatedBy   string       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (WorkflowDefinition) TableName() string {
	return "workflow_definitions"
}

// WorkflowStep describes one approval stage. On a definition only StepNumber,
// ApproverIDs and RequiredApprovals are meaningful; the accumulation fields
// (ApprovedBy, RejectedBy, Comments) exist on a submission's copy.
type WorkflowStep struct {
	StepNumber        int           `json:"step_number"`
	ApproverIDs       []string      `json:"approver_ids"`
	RequiredApprovals int           `json:"required_approvals"`
	ApprovedBy        []string      `json:"approved_by,omitempty"`
	RejectedBy        string        `json:"rejected_by,omitempty"`
	Comments          []StepComment `json:"comments,omitempty"`
}

type StepComment struct {
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *WorkflowStep) HasApprover(userID string) bool {
	for _, id := range s.ApproverIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *WorkflowStep) HasApproved(userID string) bool {
	for _, id := range s.ApprovedBy {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *WorkflowStep) QuorumMet() bool {
	return len(s.ApprovedBy) >= s.RequiredApprovals
}

// StepList is an ordered list of workflow steps persisted as a jsonb column.
type StepList []WorkflowStep

// Clone returns a deep copy with fresh backing arrays. Accumulation fields
// are cleared so a new submission always starts from an untouched chain.
func (l StepList) Clone() StepList {
	if l == nil {
		return nil
	}
	out := make(StepList, len(l))
	for i, step := range l {
		approvers := make([]string, len(step.ApproverIDs))
		copy(approvers, step.ApproverIDs)
		out[i] = WorkflowStep{
			StepNumber:        step.StepNumber,
			ApproverIDs:       approvers,
			RequiredApprovals: step.RequiredApprovals,
		}
	}
	return out
}

func (l StepList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StepList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StepList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l StepList) GormDataType() string {
	return "jsonb"
}

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) GormDataType() string {
	return "jsonb"
}
