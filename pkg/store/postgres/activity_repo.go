package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var _ store.ActivityStore = (*ActivityRepository)(nil)

func (r *ActivityRepository) Insert(ctx context.Context, entry *model.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByOrg serves the reporting endpoint; the workflow core never reads
// activity entries back.
func (r *ActivityRepository) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]model.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.ActivityEntry
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
