package repository

import (
	"context"

	"wastenot/internal/domain/model"
)

type ListingFilter struct {
	//指定があればそのブランチのリスティングだけ
	BranchID *string
}

// リスティング行の保存・ロック。
type ListingRepository interface {
	Create(ctx context.Context, listing model.Listing) error

	//所有ブランチが一致するリスティングを FOR UPDATE で取得。無ければ ErrNotFound
	LockOwned(ctx context.Context, listingID string, branchID string) (model.Listing, error)

	List(ctx context.Context, f ListingFilter) ([]model.Listing, error)
}
