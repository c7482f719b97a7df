package repository

import (
	"context"

	"wastenot/internal/domain/model"

	"gorm.io/gorm"
)

type ClaimItemGormRepository struct {
	db *gorm.DB
}

func NewClaimItemGormRepository(db *gorm.DB) *ClaimItemGormRepository {
	return &ClaimItemGormRepository{db: db}
}

func (r *ClaimItemGormRepository) CreateBulk(ctx context.Context, claimID string, items []model.ClaimItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ClaimID = claimID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ClaimItemGormRepository) ListDetailsByClaimIDs(ctx context.Context, claimIDs []string) ([]model.ClaimItemDetail, error) {
	out := []model.ClaimItemDetail{}
	if len(claimIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Table("claim_items AS ci").
		Select(`ci.claim_id, ci.line_item_id, ci.quantity,
			li.product_id, p.name AS product_name, li.listing_id,
			l.branch_id AS store_branch_id, li.remaining`).
		Joins("JOIN listing_line_items li ON li.id = ci.line_item_id").
		Joins("JOIN products p ON p.id = li.product_id").
		Joins("JOIN listings l ON l.id = li.listing_id").
		Where("ci.claim_id IN ?", claimIDs).
		Order("ci.claim_id asc").
		Order("p.name asc").
		Order("ci.id asc").
		Scan(&out).Error
	if err != nil {
		return []model.ClaimItemDetail{}, err
	}
	return out, nil
}

func (r *ClaimItemGormRepository) CountForStore(ctx context.Context, claimID string, storeBranchID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("claim_items AS ci").
		Joins("JOIN listing_line_items li ON li.id = ci.line_item_id").
		Joins("JOIN listings l ON l.id = li.listing_id").
		Where("ci.claim_id = ? AND l.branch_id = ?", claimID, storeBranchID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
