package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meditrack/internal/model"
)

// DoseRepository handles CRUD for dose instances.
type DoseRepository struct {
	db *gorm.DB
}

func NewDoseRepository(db *gorm.DB) *DoseRepository {
	return &DoseRepository{db: db}
}

func (r *DoseRepository) Insert(ctx context.Context, dose *model.DoseInstance) error {
	if err := r.db.WithContext(ctx).Create(dose).Error; err != nil {
		return fmt.Errorf("insert dose: %w", err)
	}
	return nil
}

// ListAll returns every stored dose ordered by schedule time, the same
// ordering the dashboard observes.
func (r *DoseRepository) ListAll(ctx context.Context) ([]model.DoseInstance, error) {
	var doses []model.DoseInstance
	if err := r.db.WithContext(ctx).Order("scheduled_at ASC").Find(&doses).Error; err != nil {
		return nil, err
	}
	return doses, nil
}

func (r *DoseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DoseInstance, error) {
	var dose model.DoseInstance
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dose).Error; err != nil {
		return nil, err
	}
	return &dose, nil
}

// FetchByGroupID returns the whole treatment family, ordered by schedule time.
func (r *DoseRepository) FetchByGroupID(ctx context.Context, groupID uuid.UUID) ([]model.DoseInstance, error) {
	var doses []model.DoseInstance
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("scheduled_at ASC").
		Find(&doses).Error; err != nil {
		return nil, err
	}
	return doses, nil
}

// Save replaces the whole stored object. Toggling completion goes through
// here rather than a column update.
func (r *DoseRepository) Save(ctx context.Context, dose *model.DoseInstance) error {
	if err := r.db.WithContext(ctx).Save(dose).Error; err != nil {
		return fmt.Errorf("save dose: %w", err)
	}
	return nil
}

func (r *DoseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.DoseInstance{}).Error; err != nil {
		return fmt.Errorf("delete dose: %w", err)
	}
	return nil
}

func (r *DoseRepository) DeleteByGroupID(ctx context.Context, groupID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Delete(&model.DoseInstance{}).Error; err != nil {
		return fmt.Errorf("delete dose group: %w", err)
	}
	return nil
}
