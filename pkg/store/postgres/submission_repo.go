package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

var _ store.SubmissionStore = (*SubmissionRepository)(nil)

func (r *SubmissionRepository) Create(ctx context.Context, sub *model.ContentSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*model.ContentSubmission, error) {
	var sub model.ContentSubmission
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &sub, nil
}

func (r *SubmissionRepository) List(ctx context.Context, filter store.SubmissionFilter) ([]model.ContentSubmission, error) {
	query := r.db.WithContext(ctx).Model(&model.ContentSubmission{})

	if filter.OrgID != "" {
		query = query.Where("org_id = ?", filter.OrgID)
	}
	if filter.State != "" {
		query = query.Where("current_state = ?", filter.State)
	}
	if filter.SubmittedBy != "" {
		query = query.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var subs []model.ContentSubmission
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&subs).Error
	return subs, err
}

// Transition linearizes concurrent actions on one submission: the row is
// locked FOR UPDATE for the duration of the transaction, so the callback
// always sees the latest approvedBy sets before deciding whether the quorum
// is met. A callback error rolls everything back.
func (r *SubmissionRepository) Transition(ctx context.Context, id string, apply func(*model.ContentSubmission) (*store.SubmissionPatch, error)) (*model.ContentSubmission, error) {
	var updated *model.ContentSubmission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.ContentSubmission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sub, "id = ?", id).Error
		if err != nil {
			return translateErr(err)
		}

		patch, err := apply(&sub)
		if err != nil {
			return err
		}

		changes := patchChanges(patch)
		if err := tx.Model(&model.ContentSubmission{}).
			Where("id = ?", id).
			Updates(changes).Error; err != nil {
			return err
		}

		applyPatch(&sub, patch)
		updated = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// patchChanges maps the typed patch onto column updates. Only the fields the
// action handlers are allowed to touch can ever appear here.
func patchChanges(patch *store.SubmissionPatch) map[string]interface{} {
	changes := map[string]interface{}{
		"steps":      patch.Steps,
		"updated_at": time.Now().UTC(),
	}
	if patch.CurrentState != nil {
		changes["current_state"] = *patch.CurrentState
	}
	if patch.CurrentStep != nil {
		changes["current_step"] = *patch.CurrentStep
	}
	if patch.FinalApprovedBy != nil {
		changes["final_approved_by"] = *patch.FinalApprovedBy
	}
	if patch.FinalRejectedBy != nil {
		changes["final_rejected_by"] = *patch.FinalRejectedBy
	}
	if patch.ApprovalCompletedAt != nil {
		changes["approval_completed_at"] = patch.ApprovalCompletedAt
	}
	if patch.PublishedAt != nil {
		changes["published_at"] = patch.PublishedAt
	}
	return changes
}

func applyPatch(sub *model.ContentSubmission, patch *store.SubmissionPatch) {
	sub.Steps = patch.Steps
	if patch.CurrentState != nil {
		sub.CurrentState = *patch.CurrentState
	}
	if patch.CurrentStep != nil {
		sub.CurrentStep = *patch.CurrentStep
	}
	if patch.FinalApprovedBy != nil {
		sub.FinalApprovedBy = *patch.FinalApprovedBy
	}
	if patch.FinalRejectedBy != nil {
		sub.FinalRejectedBy = *patch.FinalRejectedBy
	}
	if patch.ApprovalCompletedAt != nil {
		sub.ApprovalCompletedAt = patch.ApprovalCompletedAt
	}
	if patch.PublishedAt != nil {
		sub.PublishedAt = patch.PublishedAt
	}
}
