package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const CapabilityApproveContent = "approve_content"

// OrgMember backs the team directory: membership, capability grants and the
// display name denormalized onto submissions at submit time.
type OrgMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_user"`
	UserID       string    `gorm:"not null;uniqueIndex:idx_org_user"`
	DisplayName  string
	Role         string         `gorm:"type:varchar(50)"`
	Capabilities pq.StringArray `gorm:"type:text[]"`
	IsActive     bool           `gorm:"not null;default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OrgMember) TableName() string {
	return "org_members"
}

func (m *OrgMember) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
