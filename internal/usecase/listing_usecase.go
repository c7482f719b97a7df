package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"github.com/rs/zerolog"
)

type ListingUsecase struct {
	tx        repo.TransactionManager
	listings  repo.ListingRepository
	inventory repo.InventoryRepository
	products  repo.ProductRepository
	branches  repo.BranchRepository
	idGen     IDGenerator
	clock     Clock
	rec       OutcomeRecorder
}

// DI
func NewListingUsecase(
	tx repo.TransactionManager,
	listings repo.ListingRepository,
	inventory repo.InventoryRepository,
	products repo.ProductRepository,
	branches repo.BranchRepository,
	idGen IDGenerator,
	clock Clock,
	rec OutcomeRecorder,
) *ListingUsecase {
	return &ListingUsecase{
		tx:        tx,
		listings:  listings,
		inventory: inventory,
		products:  products,
		branches:  branches,
		idGen:     idGen,
		clock:     clock,
		rec:       rec,
	}
}

type ListingItemInput struct {
	ProductID string
	Quantity  int64
}

type CreateListingInput struct {
	Items []ListingItemInput
}

type CreateListingOutput struct {
	ListingID string `json:"listing_id"`
}

// リスティングと明細を1トランザクションで作る。残数は出品数と同じ。
func (u *ListingUsecase) CreateListing(ctx context.Context, branchID string, in CreateListingInput) (out CreateListingOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "create_listing", branchID)
	defer func() { done(err) }()

	if strings.TrimSpace(branchID) == "" {
		return CreateListingOutput{}, validationError("branch_id required")
	}
	if len(in.Items) == 0 {
		return CreateListingOutput{}, validationError("items required")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return CreateListingOutput{}, validationError("product_id required")
		}
		if !isID(it.ProductID) {
			return CreateListingOutput{}, validationError("invalid product_id")
		}
		if it.Quantity < 0 {
			return CreateListingOutput{}, validationError("quantity must be >= 0")
		}
	}

	now := u.clock.Now()
	listing := model.Listing{
		ID:        u.idGen.NewID(),
		BranchID:  branchID,
		CreatedAt: now,
	}
	items := make([]model.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.LineItem{
			ID:        u.idGen.NewID(),
			ListingID: listing.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Remaining: it.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	productIDs := make([]string, 0, len(items))
	for _, li := range items {
		productIDs = append(productIDs, li.ProductID)
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品は自ブランチのカタログにあるものだけ
		products, err := r.Products().FindByIDs(ctx, productIDs)
		if err != nil {
			return dbError(err)
		}
		for _, id := range productIDs {
			p, ok := products[id]
			if !ok {
				return validationError("product not found: " + id)
			}
			if p.BranchID != branchID {
				return validationError("product belongs to another branch: " + id)
			}
		}

		if err := r.Listings().Create(ctx, listing); err != nil {
			return dbError(err)
		}
		if err := r.Inventory().CreateBulk(ctx, items); err != nil {
			return dbError(err)
		}

		//監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: branchID,
			Action:        model.AuditActionCreateListing,
			ResourceType:  model.AuditResourceListing,
			ResourceID:    listing.ID,
			AfterJSON:     auditJSON(map[string]interface{}{"items": len(items)}),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CreateListingOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("listing_id", listing.ID).
		Int("items", len(items)).
		Msg("listing created")
	return CreateListingOutput{ListingID: listing.ID}, nil
}

type LineItemEdit struct {
	LineItemID string
	Remaining  int64
}

type UpdateListingItemsInput struct {
	Items []LineItemEdit
}

type UpdateListingItemsOutput struct {
	UpdatedAmt int64 `json:"updated_amt"`
}

// 明細の残数を手動で直す。
// このリスティングの明細だけ対象で、他のIDは黙って無視する。
// クレーム済み数量との整合は見ない（差分は inventory_adjustments に残る）。
func (u *ListingUsecase) UpdateListingItems(ctx context.Context, branchID string, listingID string, in UpdateListingItemsInput) (out UpdateListingItemsOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "update_listing_items", branchID)
	defer func() { done(err) }()

	if strings.TrimSpace(branchID) == "" {
		return UpdateListingItemsOutput{}, validationError("branch_id required")
	}
	for _, e := range in.Items {
		if e.Remaining < 0 {
			return UpdateListingItemsOutput{}, validationError("quantity must be >= 0")
		}
	}
	if !isID(listingID) {
		return UpdateListingItemsOutput{}, notFound("listing not found")
	}

	var updated int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//所有チェック＋リスティング行ロック
		if _, err := r.Listings().LockOwned(ctx, listingID, branchID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("listing not found")
			}
			return dbError(err)
		}

		current, err := r.Inventory().LockListingItems(ctx, listingID)
		if err != nil {
			return dbError(err)
		}
		byID := make(map[string]int64, len(current))
		for _, li := range current {
			byID[li.ID] = li.Remaining
		}

		now := u.clock.Now()
		before := map[string]int64{}
		after := map[string]int64{}
		for _, e := range in.Items {
			cur, ok := byID[e.LineItemID]
			if !ok {
				continue
			}
			if err := r.Inventory().SetRemaining(ctx, e.LineItemID, e.Remaining); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				return dbError(err)
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				LineItemID: e.LineItemID,
				BranchID:   branchID,
				Delta:      e.Remaining - cur,
				Reason:     "manual edit",
				CreatedAt:  now,
			}); err != nil {
				return dbError(err)
			}
			if _, seen := before[e.LineItemID]; !seen {
				before[e.LineItemID] = cur
			}
			after[e.LineItemID] = e.Remaining
			byID[e.LineItemID] = e.Remaining
			updated++
		}

		if updated == 0 {
			return nil
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: branchID,
			Action:        model.AuditActionUpdateListing,
			ResourceType:  model.AuditResourceListing,
			ResourceID:    listingID,
			BeforeJSON:    auditJSON(before),
			AfterJSON:     auditJSON(after),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return UpdateListingItemsOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("listing_id", listingID).
		Int64("updated", updated).
		Msg("listing items updated")
	return UpdateListingItemsOutput{UpdatedAmt: updated}, nil
}

type CancelListingOutput struct {
	ListingID string `json:"listing_id"`
	ZeroedAmt int64  `json:"zeroed_amt"`
}

// 全明細の残数を0にする。既存のクレームはそのまま。
func (u *ListingUsecase) CancelListing(ctx context.Context, branchID string, listingID string) (out CancelListingOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "cancel_listing", branchID)
	defer func() { done(err) }()

	if strings.TrimSpace(branchID) == "" {
		return CancelListingOutput{}, validationError("branch_id required")
	}
	if !isID(listingID) {
		return CancelListingOutput{}, notFound("listing not found")
	}

	var zeroed int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Listings().LockOwned(ctx, listingID, branchID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("listing not found")
			}
			return dbError(err)
		}

		items, err := r.Inventory().LockListingItems(ctx, listingID)
		if err != nil {
			return dbError(err)
		}

		now := u.clock.Now()
		before := map[string]int64{}
		for _, li := range items {
			before[li.ID] = li.Remaining
			if li.Remaining == 0 {
				continue
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				LineItemID: li.ID,
				BranchID:   branchID,
				Delta:      -li.Remaining,
				Reason:     "listing cancelled",
				CreatedAt:  now,
			}); err != nil {
				return dbError(err)
			}
		}

		n, err := r.Inventory().ZeroRemaining(ctx, listingID)
		if err != nil {
			return dbError(err)
		}
		zeroed = n

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: branchID,
			Action:        model.AuditActionCancelListing,
			ResourceType:  model.AuditResourceListing,
			ResourceID:    listingID,
			BeforeJSON:    auditJSON(before),
			AfterJSON:     auditJSON(map[string]int64{"zeroed": n}),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CancelListingOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("listing_id", listingID).
		Int64("zeroed", zeroed).
		Msg("listing cancelled")
	return CancelListingOutput{ListingID: listingID, ZeroedAmt: zeroed}, nil
}

type ProductOutput struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

// 出品できる商品（ブランチのカタログ）
func (u *ListingUsecase) ListBranchProducts(ctx context.Context, branchID string) ([]ProductOutput, error) {
	if strings.TrimSpace(branchID) == "" {
		return nil, validationError("branch_id required")
	}
	products, err := u.products.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, dbError(err)
	}
	out := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		out = append(out, ProductOutput{ProductID: p.ID, ProductName: p.Name})
	}
	return out, nil
}

type AvailableItemOutput struct {
	LineItemID  string `json:"listing_line_item_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"` // 残数
}

type AvailableListingOutput struct {
	ListingID      string                `json:"listing_id"`
	BranchID       string                `json:"branch_id"`
	OrgName        string                `json:"org_name"`
	BranchName     string                `json:"branch_name"`
	BranchLocation string                `json:"branch_location"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []AvailableItemOutput `json:"items"`
}

// クレームできるリスティング（残数1以上の明細があるもの）
func (u *ListingUsecase) ListClaimableListings(ctx context.Context) ([]AvailableListingOutput, error) {
	return u.listAvailable(ctx, repo.ListingFilter{})
}

// 自ブランチのリスティング（残数1以上の明細があるもの）
func (u *ListingUsecase) ListBranchListings(ctx context.Context, branchID string) ([]AvailableListingOutput, error) {
	if strings.TrimSpace(branchID) == "" {
		return nil, validationError("branch_id required")
	}
	return u.listAvailable(ctx, repo.ListingFilter{BranchID: &branchID})
}

func (u *ListingUsecase) listAvailable(ctx context.Context, f repo.ListingFilter) ([]AvailableListingOutput, error) {
	listings, err := u.listings.List(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}
	if len(listings) == 0 {
		return []AvailableListingOutput{}, nil
	}

	ids := make([]string, 0, len(listings))
	branchIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
		branchIDs = append(branchIDs, l.BranchID)
	}

	available, err := u.inventory.ListAvailable(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}
	//listing_id -> 明細
	byListing := map[string][]AvailableItemOutput{}
	for _, a := range available {
		byListing[a.ListingID] = append(byListing[a.ListingID], AvailableItemOutput{
			LineItemID:  a.LineItemID,
			ProductID:   a.ProductID,
			ProductName: a.ProductName,
			Quantity:    a.Remaining,
		})
	}

	branches, err := u.branches.FindByIDs(ctx, uniqueStrings(branchIDs))
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]AvailableListingOutput, 0, len(byListing))
	for _, l := range listings {
		items := byListing[l.ID]
		if len(items) == 0 {
			continue
		}
		b := branches[l.BranchID]
		out = append(out, AvailableListingOutput{
			ListingID:      l.ID,
			BranchID:       l.BranchID,
			OrgName:        b.OrgName,
			BranchName:     b.BranchName,
			BranchLocation: b.Location,
			CreatedAt:      l.CreatedAt,
			Items:          items,
		})
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
