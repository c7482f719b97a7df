package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"

	"github.com/rs/zerolog"
)

type ClaimUsecase struct {
	tx         repo.TransactionManager
	claims     repo.ClaimRepository
	claimItems repo.ClaimItemRepository
	branches   repo.BranchRepository
	idGen      IDGenerator
	clock      Clock
	rec        OutcomeRecorder
}

// DI
func NewClaimUsecase(
	tx repo.TransactionManager,
	claims repo.ClaimRepository,
	claimItems repo.ClaimItemRepository,
	branches repo.BranchRepository,
	idGen IDGenerator,
	clock Clock,
	rec OutcomeRecorder,
) *ClaimUsecase {
	return &ClaimUsecase{
		tx:         tx,
		claims:     claims,
		claimItems: claimItems,
		branches:   branches,
		idGen:      idGen,
		clock:      clock,
		rec:        rec,
	}
}

type ClaimItemInput struct {
	LineItemID string
	Quantity   int64
}

type CreateClaimInput struct {
	Items []ClaimItemInput
}

type CreateClaimOutput struct {
	ClaimID string `json:"claim_id"`
}

// 明細から数量を確保してクレームを作る。
// 明細行はID昇順で1行ずつ FOR UPDATE。1つでも足りなければ全体を取り消す。
func (u *ClaimUsecase) CreateClaim(ctx context.Context, branchID string, in CreateClaimInput) (out CreateClaimOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "create_claim", branchID)
	defer func() { done(err) }()

	//ロック前に入力チェック
	if strings.TrimSpace(branchID) == "" {
		return CreateClaimOutput{}, validationError("branch_id required")
	}
	if len(in.Items) == 0 {
		return CreateClaimOutput{}, validationError("items required")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.LineItemID) == "" {
			return CreateClaimOutput{}, validationError("listing_line_item_id required")
		}
		if it.Quantity < 0 {
			return CreateClaimOutput{}, validationError("quantity must be >= 0")
		}
	}

	//同じ明細は合算して判定
	requested := map[string]int64{}
	for _, it := range in.Items {
		if !isID(it.LineItemID) {
			return CreateClaimOutput{}, notFound("listing line item not found")
		}
		requested[it.LineItemID] += it.Quantity
	}
	lockOrder := make([]string, 0, len(requested))
	for id := range requested {
		lockOrder = append(lockOrder, id)
	}
	sort.Strings(lockOrder)

	now := u.clock.Now()
	claim := model.Claim{
		ID:        u.idGen.NewID(),
		BranchID:  branchID,
		Approved:  false,
		CreatedAt: now,
	}
	claimItems := make([]model.ClaimItem, 0, len(in.Items))
	for _, it := range in.Items {
		claimItems = append(claimItems, model.ClaimItem{
			ID:         u.idGen.NewID(),
			ClaimID:    claim.ID,
			LineItemID: it.LineItemID,
			Quantity:   it.Quantity,
			CreatedAt:  now,
		})
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//ID昇順でロック
		locked := make(map[string]model.LineItem, len(lockOrder))
		for _, id := range lockOrder {
			li, err := r.Inventory().LockLineItem(ctx, id)
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("listing line item not found")
			}
			if err != nil {
				return dbError(err)
			}
			locked[id] = li
		}

		//ロックしたまま残数チェック
		for _, id := range lockOrder {
			if requested[id] > locked[id].Remaining {
				return conflict("insufficient quantity")
			}
		}

		for _, id := range lockOrder {
			ok, err := r.Inventory().DecreaseRemainingIfEnough(ctx, id, requested[id])
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return conflict("insufficient quantity")
			}
		}

		if err := r.Claims().Create(ctx, claim); err != nil {
			return dbError(err)
		}
		if err := r.ClaimItems().CreateBulk(ctx, claim.ID, claimItems); err != nil {
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: branchID,
			Action:        model.AuditActionCreateClaim,
			ResourceType:  model.AuditResourceClaim,
			ResourceID:    claim.ID,
			AfterJSON:     auditJSON(requested),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CreateClaimOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("claim_id", claim.ID).
		Int("line_items", len(lockOrder)).
		Msg("claim created")
	return CreateClaimOutput{ClaimID: claim.ID}, nil
}

type ClaimItemOutput struct {
	LineItemID  string `json:"listing_line_item_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type PendingClaimOutput struct {
	ClaimID    string            `json:"claim_id"`
	BranchID   string            `json:"branch_id"`
	OrgName    string            `json:"org_name"`
	BranchName string            `json:"branch_name"`
	CreatedAt  time.Time         `json:"created_at"`
	Approved   bool              `json:"approved"`
	Items      []ClaimItemOutput `json:"items"`
	TotalItems int64             `json:"total_items"`
}

// 店舗のリスティングを含む未承認クレーム（新しい順）
func (u *ClaimUsecase) ListPendingClaims(ctx context.Context, storeBranchID string) ([]PendingClaimOutput, error) {
	if strings.TrimSpace(storeBranchID) == "" {
		return nil, validationError("branch_id required")
	}

	claims, err := u.claims.ListPendingForStore(ctx, storeBranchID)
	if err != nil {
		return nil, dbError(err)
	}
	if len(claims) == 0 {
		return []PendingClaimOutput{}, nil
	}

	claimIDs := make([]string, 0, len(claims))
	charityIDs := make([]string, 0, len(claims))
	for _, c := range claims {
		claimIDs = append(claimIDs, c.ID)
		charityIDs = append(charityIDs, c.BranchID)
	}

	details, err := u.claimItems.ListDetailsByClaimIDs(ctx, claimIDs)
	if err != nil {
		return nil, dbError(err)
	}
	itemsByClaim := map[string][]ClaimItemOutput{}
	for _, d := range details {
		itemsByClaim[d.ClaimID] = append(itemsByClaim[d.ClaimID], ClaimItemOutput{
			LineItemID:  d.LineItemID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
		})
	}

	branches, err := u.branches.FindByIDs(ctx, uniqueStrings(charityIDs))
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]PendingClaimOutput, 0, len(claims))
	for _, c := range claims {
		items := itemsByClaim[c.ID]
		if items == nil {
			items = []ClaimItemOutput{}
		}
		var total int64
		for _, it := range items {
			total += it.Quantity
		}
		b := branches[c.BranchID]
		out = append(out, PendingClaimOutput{
			ClaimID:    c.ID,
			BranchID:   c.BranchID,
			OrgName:    b.OrgName,
			BranchName: b.BranchName,
			CreatedAt:  c.CreatedAt,
			Approved:   c.Approved,
			Items:      items,
			TotalItems: total,
		})
	}
	return out, nil
}
