package repository

import (
	"context"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) CreateBulk(ctx context.Context, items []model.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// 明細1行をロック（SELECT ... FOR UPDATE）
func (r *InventoryGormRepository) LockLineItem(ctx context.Context, lineItemID string) (model.LineItem, error) {
	var li model.LineItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", lineItemID).
		First(&li).Error
	if isNotFound(err) {
		return model.LineItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LineItem{}, err
	}
	return li, nil
}

// リスティング配下をID順にロック
func (r *InventoryGormRepository) LockListingItems(ctx context.Context, listingID string) ([]model.LineItem, error) {
	var items []model.LineItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.LineItem{}, err
	}
	return items, nil
}

// 残数が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseRemainingIfEnough(ctx context.Context, lineItemID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Where("id = ? AND remaining >= ?", lineItemID, qty).
		Update("remaining", gorm.Expr("remaining - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 残数の現在値を設定
func (r *InventoryGormRepository) SetRemaining(ctx context.Context, lineItemID string, remaining int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Where("id = ?", lineItemID).
		Update("remaining", remaining)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) ZeroRemaining(ctx context.Context, listingID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Where("listing_id = ?", listingID).
		Update("remaining", 0)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *InventoryGormRepository) ListAvailable(ctx context.Context, listingIDs []string) ([]model.AvailableItem, error) {
	out := []model.AvailableItem{}
	if len(listingIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Table("listing_line_items AS li").
		Select("li.listing_id, li.id AS line_item_id, li.product_id, p.name AS product_name, li.remaining").
		Joins("JOIN products p ON p.id = li.product_id").
		Where("li.listing_id IN ? AND li.remaining >= 1", listingIDs).
		Order("li.listing_id asc").
		Order("p.name asc").
		Scan(&out).Error
	if err != nil {
		return []model.AvailableItem{}, err
	}
	return out, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
