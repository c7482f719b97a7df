package repository

import (
	"context"
	"time"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PickupGormRepository struct {
	db *gorm.DB
}

func NewPickupGormRepository(db *gorm.DB) *PickupGormRepository {
	return &PickupGormRepository{db: db}
}

// claim_id / token のUNIQUE違反は ErrDuplicate
func (r *PickupGormRepository) Create(ctx context.Context, pickup model.Pickup) error {
	err := r.db.WithContext(ctx).Create(&pickup).Error
	if isUniqueViolation(err) {
		return repo.ErrDuplicate
	}
	return err
}

func (r *PickupGormRepository) LockByToken(ctx context.Context, token string) (model.Pickup, error) {
	var p model.Pickup
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).
		First(&p).Error
	if isNotFound(err) {
		return model.Pickup{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Pickup{}, err
	}
	return p, nil
}

func (r *PickupGormRepository) FindByClaimID(ctx context.Context, claimID string) (model.Pickup, error) {
	var p model.Pickup
	err := r.db.WithContext(ctx).Where("claim_id = ?", claimID).First(&p).Error
	if isNotFound(err) {
		return model.Pickup{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Pickup{}, err
	}
	return p, nil
}

func (r *PickupGormRepository) ListByClaimIDs(ctx context.Context, claimIDs []string) ([]model.Pickup, error) {
	var pickups []model.Pickup
	if len(claimIDs) == 0 {
		return []model.Pickup{}, nil
	}
	if err := r.db.WithContext(ctx).Where("claim_id IN ?", claimIDs).Find(&pickups).Error; err != nil {
		return []model.Pickup{}, err
	}
	return pickups, nil
}

// complete=false の行だけ更新する
func (r *PickupGormRepository) MarkComplete(ctx context.Context, pickupID string, completedBy string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Pickup{}).
		Where("id = ? AND complete = ?", pickupID, false).
		Updates(map[string]interface{}{
			"complete":     true,
			"completed_by": completedBy,
			"completed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
