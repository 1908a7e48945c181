package team

import (
	"context"
	"errors"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
	"github.com/stagegate/stagegate/pkg/workflow"
)

// MemberReader is the slice of the member repository the directory needs.
type MemberReader interface {
	Get(ctx context.Context, orgID, userID string) (*model.OrgMember, error)
	GetByUserID(ctx context.Context, userID string) (*model.OrgMember, error)
}

// Directory answers membership, capability and display-name questions from
// the org_members table. It is the default in-process implementation of the
// workflow core's permission and identity ports.
type Directory struct {
	members MemberReader
}

func NewDirectory(members MemberReader) *Directory {
	return &Directory{members: members}
}

var (
	_ workflow.PermissionOracle = (*Directory)(nil)
	_ workflow.IdentityResolver = (*Directory)(nil)
)

func (d *Directory) IsActiveMember(ctx context.Context, userID, orgID string) (bool, error) {
	member, err := d.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.IsActive, nil
}

func (d *Directory) HasCapability(ctx context.Context, userID, orgID, capability string) (bool, error) {
	member, err := d.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.IsActive && member.HasCapability(capability), nil
}

func (d *Directory) GetDisplayName(ctx context.Context, userID string) (string, error) {
	member, err := d.members.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return member.DisplayName, nil
}
