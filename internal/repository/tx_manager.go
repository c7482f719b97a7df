package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Listings() ListingRepository
	Inventory() InventoryRepository
	Claims() ClaimRepository
	ClaimItems() ClaimItemRepository
	Pickups() PickupRepository
	Branches() BranchRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全部rollback。ロックはcommit/rollbackで解放される。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
