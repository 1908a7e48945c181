package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

var _ store.DefinitionStore = (*WorkflowRepository)(nil)

func (r *WorkflowRepository) Create(ctx context.Context, def *model.WorkflowDefinition) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	var def model.WorkflowDefinition
	err := r.db.WithContext(ctx).First(&def, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &def, nil
}

func (r *WorkflowRepository) ListActive(ctx context.Context, orgID string) ([]model.WorkflowDefinition, error) {
	var defs []model.WorkflowDefinition
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("created_at DESC").
		Find(&defs).Error
	return defs, err
}

func (r *WorkflowRepository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.WorkflowDefinition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
