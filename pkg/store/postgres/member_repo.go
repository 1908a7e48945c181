package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stagegate/stagegate/pkg/model"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Get(ctx context.Context, orgID, userID string) (*model.OrgMember, error) {
	var member model.OrgMember
	err := r.db.WithContext(ctx).
		First(&member, "org_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &member, nil
}

func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (*model.OrgMember, error) {
	var member model.OrgMember
	err := r.db.WithContext(ctx).First(&member, "user_id = ?", userID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &member, nil
}
