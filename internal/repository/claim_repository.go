package repository

import (
	"context"
	"time"

	"wastenot/internal/domain/model"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim model.Claim) error
	FindByID(ctx context.Context, claimID string) (model.Claim, error)

	// FOR UPDATE
	LockByID(ctx context.Context, claimID string) (model.Claim, error)

	MarkApproved(ctx context.Context, claimID string, approvedBy string, at time.Time) error

	//店舗の明細を含む未承認クレーム（新しい順）
	ListPendingForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error)

	//承認済みで受け取り未完了のもの
	ListAwaitingPickupForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error)

	//チャリティの承認済みクレーム（承認が新しい順）
	ListApprovedForCharity(ctx context.Context, charityBranchID string) ([]model.Claim, error)
}

type ClaimItemRepository interface {
	CreateBulk(ctx context.Context, claimID string, items []model.ClaimItem) error

	// 商品名・出品ブランチ・残数つき。商品名順
	ListDetailsByClaimIDs(ctx context.Context, claimIDs []string) ([]model.ClaimItemDetail, error)

	// クレーム明細のうち storeBranchID のリスティングを参照している件数
	CountForStore(ctx context.Context, claimID string, storeBranchID string) (int64, error)
}
