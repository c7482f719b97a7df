package repository

import (
	"context"

	"wastenot/internal/domain/model"

	"gorm.io/gorm"
)

type BranchGormRepository struct {
	db *gorm.DB
}

func NewBranchGormRepository(db *gorm.DB) *BranchGormRepository {
	return &BranchGormRepository{db: db}
}

func (r *BranchGormRepository) FindByIDs(ctx context.Context, branchIDs []string) (map[string]model.Branch, error) {
	out := map[string]model.Branch{}
	if len(branchIDs) == 0 {
		return out, nil
	}
	var branches []model.Branch
	if err := r.db.WithContext(ctx).Where("id IN ?", branchIDs).Find(&branches).Error; err != nil {
		return nil, err
	}
	for _, b := range branches {
		out[b.ID] = b
	}
	return out, nil
}
