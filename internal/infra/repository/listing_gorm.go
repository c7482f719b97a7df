package repository

import (
	"context"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListingGormRepository struct {
	db *gorm.DB
}

func NewListingGormRepository(db *gorm.DB) *ListingGormRepository {
	return &ListingGormRepository{db: db}
}

func (r *ListingGormRepository) Create(ctx context.Context, listing model.Listing) error {
	return r.db.WithContext(ctx).Create(&listing).Error
}

// 他ブランチのリスティングは存在しない扱い
func (r *ListingGormRepository) LockOwned(ctx context.Context, listingID string, branchID string) (model.Listing, error) {
	var l model.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND branch_id = ?", listingID, branchID).
		First(&l).Error
	if isNotFound(err) {
		return model.Listing{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Listing{}, err
	}
	return l, nil
}

// 新しい順
func (r *ListingGormRepository) List(ctx context.Context, f repo.ListingFilter) ([]model.Listing, error) {
	q := r.db.WithContext(ctx).Model(&model.Listing{})
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}

	var listings []model.Listing
	if err := q.Order("created_at desc").Order("id desc").Find(&listings).Error; err != nil {
		return []model.Listing{}, err
	}
	return listings, nil
}
