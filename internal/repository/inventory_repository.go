package repository

import (
	"context"

	"wastenot/internal/domain/model"
)

// 明細の残数カウンタ。残数を変えるのは全部ここ。
type InventoryRepository interface {
	CreateBulk(ctx context.Context, items []model.LineItem) error

	// 明細1行を FOR UPDATE でロック。無ければ ErrNotFound
	LockLineItem(ctx context.Context, lineItemID string) (model.LineItem, error)

	// リスティング配下の明細をID順にロック
	LockListingItems(ctx context.Context, listingID string) ([]model.LineItem, error)

	// 残数が足りるときだけ減算
	DecreaseRemainingIfEnough(ctx context.Context, lineItemID string, qty int64) (bool, error)

	// 残数を指定値にする（手動修正）
	SetRemaining(ctx context.Context, lineItemID string, remaining int64) error

	// リスティング配下を全部0にする。更新行数を返す
	ZeroRemaining(ctx context.Context, listingID string) (int64, error)

	// 残数1以上の明細（商品名つき）
	ListAvailable(ctx context.Context, listingIDs []string) ([]model.AvailableItem, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
