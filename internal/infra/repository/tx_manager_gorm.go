package repository

import (
	"context"
	"time"

	repo "wastenot/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	listings   repo.ListingRepository
	inventory  repo.InventoryRepository
	claims     repo.ClaimRepository
	claimItems repo.ClaimItemRepository
	pickups    repo.PickupRepository
	branches   repo.BranchRepository
	products   repo.ProductRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Listings() repo.ListingRepository     { return r.listings }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Claims() repo.ClaimRepository         { return r.claims }
func (r *txReposGorm) ClaimItems() repo.ClaimItemRepository { return r.claimItems }
func (r *txReposGorm) Pickups() repo.PickupRepository       { return r.pickups }
func (r *txReposGorm) Branches() repo.BranchRepository      { return r.branches }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

type TxManagerGorm struct {
	db      *gorm.DB
	timeout time.Duration
}

// timeoutが0以下なら呼び出し側のctxのまま
func NewTxManagerGorm(db *gorm.DB, timeout time.Duration) *TxManagerGorm {
	return &TxManagerGorm{db: db, timeout: timeout}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if tm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.timeout)
		defer cancel()
	}

	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			listings:   NewListingGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			claims:     NewClaimGormRepository(tx),
			claimItems: NewClaimItemGormRepository(tx),
			pickups:    NewPickupGormRepository(tx),
			branches:   NewBranchGormRepository(tx),
			products:   NewProductGormRepository(tx),
			auditLogs:  NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
