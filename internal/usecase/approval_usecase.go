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

type ApprovalUsecase struct {
	tx         repo.TransactionManager
	claims     repo.ClaimRepository
	claimItems repo.ClaimItemRepository
	pickups    repo.PickupRepository
	branches   repo.BranchRepository
	tokens     TokenGenerator
	idGen      IDGenerator
	clock      Clock
	rec        OutcomeRecorder
}

// DI
func NewApprovalUsecase(
	tx repo.TransactionManager,
	claims repo.ClaimRepository,
	claimItems repo.ClaimItemRepository,
	pickups repo.PickupRepository,
	branches repo.BranchRepository,
	tokens TokenGenerator,
	idGen IDGenerator,
	clock Clock,
	rec OutcomeRecorder,
) *ApprovalUsecase {
	return &ApprovalUsecase{
		tx:         tx,
		claims:     claims,
		claimItems: claimItems,
		pickups:    pickups,
		branches:   branches,
		tokens:     tokens,
		idGen:      idGen,
		clock:      clock,
		rec:        rec,
	}
}

type ApproveClaimOutput struct {
	ClaimID  string `json:"claim_id"`
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

// クレームを承認して受け取りトークンを発行する。
// 承認済みチェックはクレーム行のロック下で行うので、同時に承認しても発行は1回。
func (u *ApprovalUsecase) ApproveClaim(ctx context.Context, storeBranchID string, claimID string) (out ApproveClaimOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "approve_claim", storeBranchID)
	defer func() { done(err) }()

	if strings.TrimSpace(storeBranchID) == "" {
		return ApproveClaimOutput{}, validationError("branch_id required")
	}
	if !isID(claimID) {
		return ApproveClaimOutput{}, notFound("claim not found")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		claim, err := r.Claims().LockByID(ctx, claimID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("claim not found")
		}
		if err != nil {
			return dbError(err)
		}
		if claim.Approved {
			return conflict("claim has already been approved")
		}

		//このブランチのリスティングを含むか
		n, err := r.ClaimItems().CountForStore(ctx, claimID, storeBranchID)
		if err != nil {
			return dbError(err)
		}
		if n == 0 {
			return forbidden("claim is not for items from your branch")
		}

		now := u.clock.Now()
		if err := r.Claims().MarkApproved(ctx, claimID, storeBranchID, now); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return conflict("claim has already been approved")
			}
			return dbError(err)
		}

		token, err := u.tokens.NewToken()
		if err != nil {
			return &AppError{Kind: KindInternal, Message: "token error", Err: err}
		}

		//一意制約で二重発行・トークン衝突を弾く（リトライしない）
		if err := r.Pickups().Create(ctx, model.Pickup{
			ID:        u.idGen.NewID(),
			ClaimID:   claimID,
			Token:     token,
			Complete:  false,
			CreatedAt: now,
		}); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return conflict("pickup already issued")
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: storeBranchID,
			Action:        model.AuditActionApproveClaim,
			ResourceType:  model.AuditResourceClaim,
			ResourceID:    claimID,
			BeforeJSON:    auditJSON(map[string]bool{"approved": false}),
			AfterJSON:     auditJSON(map[string]bool{"approved": true}),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return ApproveClaimOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("claim_id", claimID).
		Msg("claim approved")
	return ApproveClaimOutput{
		ClaimID:  claimID,
		Approved: true,
		Message:  "Claim approved successfully",
	}, nil
}

type PickupItemOutput struct {
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type StoreInfo struct {
	OrgName        string `json:"org_name"`
	BranchName     string `json:"branch_name"`
	BranchLocation string `json:"branch_location"`
}

type PickupTicketOutput struct {
	PickupID  string             `json:"pickup_id"`
	ClaimID   string             `json:"claim_id"`
	Token     string             `json:"qr_code"`
	Complete  bool               `json:"complete"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []PickupItemOutput `json:"items"`
	StoreInfo *StoreInfo         `json:"store_info,omitempty"`
}

// チャリティ側の受け取り情報。トークンはここでだけ返す。
func (u *ApprovalUsecase) DescribePickup(ctx context.Context, charityBranchID string, claimID string) (out PickupTicketOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "describe_pickup", charityBranchID)
	defer func() { done(err) }()

	if strings.TrimSpace(charityBranchID) == "" {
		return PickupTicketOutput{}, validationError("branch_id required")
	}
	if !isID(claimID) {
		return PickupTicketOutput{}, notFound("claim not found")
	}

	claim, err := u.claims.FindByID(ctx, claimID)
	if errors.Is(err, repo.ErrNotFound) {
		return PickupTicketOutput{}, notFound("claim not found")
	}
	if err != nil {
		return PickupTicketOutput{}, dbError(err)
	}
	//他のチャリティのクレームは存在しない扱い
	if claim.BranchID != charityBranchID {
		return PickupTicketOutput{}, notFound("claim not found")
	}
	if !claim.Approved {
		return PickupTicketOutput{}, conflict("claim not approved yet")
	}

	pickup, err := u.pickups.FindByClaimID(ctx, claimID)
	if errors.Is(err, repo.ErrNotFound) {
		return PickupTicketOutput{}, notFound("pickup not issued yet")
	}
	if err != nil {
		return PickupTicketOutput{}, dbError(err)
	}

	details, err := u.claimItems.ListDetailsByClaimIDs(ctx, []string{claimID})
	if err != nil {
		return PickupTicketOutput{}, dbError(err)
	}

	out = PickupTicketOutput{
		PickupID:  pickup.ID,
		ClaimID:   claimID,
		Token:     pickup.Token,
		Complete:  pickup.Complete,
		CreatedAt: pickup.CreatedAt,
		Items:     make([]PickupItemOutput, 0, len(details)),
	}
	for _, d := range details {
		out.Items = append(out.Items, PickupItemOutput{ProductName: d.ProductName, Quantity: d.Quantity})
	}

	if len(details) > 0 {
		storeID := details[0].StoreBranchID
		branches, err := u.branches.FindByIDs(ctx, []string{storeID})
		if err != nil {
			return PickupTicketOutput{}, dbError(err)
		}
		if b, ok := branches[storeID]; ok {
			out.StoreInfo = &StoreInfo{OrgName: b.OrgName, BranchName: b.BranchName, BranchLocation: b.Location}
		}
	}
	return out, nil
}

type AwaitingItemOutput struct {
	LineItemID  string `json:"listing_line_item_id"`
	ProductName string `json:"product_name"`
	Claimed     int64  `json:"claimed_quantity"`
	Remaining   int64  `json:"remaining_quantity"`
}

type AwaitingClaimOutput struct {
	ClaimID    string               `json:"claim_id"`
	ApprovedAt *time.Time           `json:"approved_at,omitempty"`
	Items      []AwaitingItemOutput `json:"items"`
	TotalItems int64                `json:"total_items"`
}

type AwaitingPickupGroup struct {
	CharityBranchID string                `json:"branch_id"`
	OrgName         string                `json:"org_name"`
	BranchName      string                `json:"branch_name"`
	Claims          []AwaitingClaimOutput `json:"claims"`
}

// 承認済みで未受け取りのクレームをチャリティごとにまとめる。明細は自店舗分だけ。
func (u *ApprovalUsecase) ListAwaitingPickup(ctx context.Context, storeBranchID string) ([]AwaitingPickupGroup, error) {
	if strings.TrimSpace(storeBranchID) == "" {
		return nil, validationError("branch_id required")
	}

	claims, err := u.claims.ListAwaitingPickupForStore(ctx, storeBranchID)
	if err != nil {
		return nil, dbError(err)
	}
	if len(claims) == 0 {
		return []AwaitingPickupGroup{}, nil
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
	itemsByClaim := map[string][]AwaitingItemOutput{}
	for _, d := range details {
		if d.StoreBranchID != storeBranchID {
			continue
		}
		itemsByClaim[d.ClaimID] = append(itemsByClaim[d.ClaimID], AwaitingItemOutput{
			LineItemID:  d.LineItemID,
			ProductName: d.ProductName,
			Claimed:     d.Quantity,
			Remaining:   d.Remaining,
		})
	}

	branches, err := u.branches.FindByIDs(ctx, uniqueStrings(charityIDs))
	if err != nil {
		return nil, dbError(err)
	}

	//承認が新しい順を保ったままチャリティでまとめる
	out := []AwaitingPickupGroup{}
	groupIdx := map[string]int{}
	for _, c := range claims {
		items := itemsByClaim[c.ID]
		if items == nil {
			items = []AwaitingItemOutput{}
		}
		var total int64
		for _, it := range items {
			total += it.Claimed
		}

		idx, ok := groupIdx[c.BranchID]
		if !ok {
			b := branches[c.BranchID]
			out = append(out, AwaitingPickupGroup{
				CharityBranchID: c.BranchID,
				OrgName:         b.OrgName,
				BranchName:      b.BranchName,
				Claims:          []AwaitingClaimOutput{},
			})
			idx = len(out) - 1
			groupIdx[c.BranchID] = idx
		}
		out[idx].Claims = append(out[idx].Claims, AwaitingClaimOutput{
			ClaimID:    c.ID,
			ApprovedAt: c.ApprovedAt,
			Items:      items,
			TotalItems: total,
		})
	}
	return out, nil
}
