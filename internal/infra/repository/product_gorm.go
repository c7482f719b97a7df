package repository

import (
	"context"

	"wastenot/internal/domain/model"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// ブランチの商品カタログ（名前順）
func (r *ProductGormRepository) ListByBranch(ctx context.Context, branchID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name asc").
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, productIDs []string) (map[string]model.Product, error) {
	out := map[string]model.Product{}
	if len(productIDs) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
