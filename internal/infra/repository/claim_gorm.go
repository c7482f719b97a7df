package repository

import (
	"context"
	"time"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// クレーム明細が storeBranchID のリスティングを参照しているか
const claimTouchesStore = `EXISTS (
	SELECT 1 FROM claim_items ci
	JOIN listing_line_items li ON li.id = ci.line_item_id
	JOIN listings l ON l.id = li.listing_id
	WHERE ci.claim_id = claims.id AND l.branch_id = ?
)`

type ClaimGormRepository struct {
	db *gorm.DB
}

func NewClaimGormRepository(db *gorm.DB) *ClaimGormRepository {
	return &ClaimGormRepository{db: db}
}

func (r *ClaimGormRepository) Create(ctx context.Context, claim model.Claim) error {
	return r.db.WithContext(ctx).Create(&claim).Error
}

func (r *ClaimGormRepository) FindByID(ctx context.Context, claimID string) (model.Claim, error) {
	var c model.Claim
	err := r.db.WithContext(ctx).Where("id = ?", claimID).First(&c).Error
	if isNotFound(err) {
		return model.Claim{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Claim{}, err
	}
	return c, nil
}

func (r *ClaimGormRepository) LockByID(ctx context.Context, claimID string) (model.Claim, error) {
	var c model.Claim
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", claimID).
		First(&c).Error
	if isNotFound(err) {
		return model.Claim{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Claim{}, err
	}
	return c, nil
}

// approved=false の行だけ更新する
func (r *ClaimGormRepository) MarkApproved(ctx context.Context, claimID string, approvedBy string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("id = ? AND approved = ?", claimID, false).
		Updates(map[string]interface{}{
			"approved":    true,
			"approved_by": approvedBy,
			"approved_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ClaimGormRepository) ListPendingForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Where("approved = ?", false).
		Where(claimTouchesStore, storeBranchID).
		Order("created_at desc").
		Order("id desc").
		Find(&claims).Error
	if err != nil {
		return []model.Claim{}, err
	}
	return claims, nil
}

func (r *ClaimGormRepository) ListAwaitingPickupForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Where(claimTouchesStore, storeBranchID).
		Where("EXISTS (SELECT 1 FROM pickups p WHERE p.claim_id = claims.id AND p.complete = ?)", false).
		Order("approved_at desc").
		Order("id desc").
		Find(&claims).Error
	if err != nil {
		return []model.Claim{}, err
	}
	return claims, nil
}

func (r *ClaimGormRepository) ListApprovedForCharity(ctx context.Context, charityBranchID string) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND approved = ?", charityBranchID, true).
		Order("approved_at desc").
		Order("id desc").
		Find(&claims).Error
	if err != nil {
		return []model.Claim{}, err
	}
	return claims, nil
}
