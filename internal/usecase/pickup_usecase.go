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

type PickupUsecase struct {
	tx         repo.TransactionManager
	claims     repo.ClaimRepository
	claimItems repo.ClaimItemRepository
	pickups    repo.PickupRepository
	branches   repo.BranchRepository
	clock      Clock
	rec        OutcomeRecorder
}

// DI
func NewPickupUsecase(
	tx repo.TransactionManager,
	claims repo.ClaimRepository,
	claimItems repo.ClaimItemRepository,
	pickups repo.PickupRepository,
	branches repo.BranchRepository,
	clock Clock,
	rec OutcomeRecorder,
) *PickupUsecase {
	return &PickupUsecase{
		tx:         tx,
		claims:     claims,
		claimItems: claimItems,
		pickups:    pickups,
		branches:   branches,
		clock:      clock,
		rec:        rec,
	}
}

type RedeemOutput struct {
	PickupID        string             `json:"pickup_id"`
	ClaimID         string             `json:"claim_id"`
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	CharityBranchID string             `json:"charity_branch_id"`
	CharityName     string             `json:"charity_name"`
	Items           []PickupItemOutput `json:"items"`
}

const unknownCharity = "Unknown"

// トークンを1回だけ消費して受け取りを完了する。
// 完了チェックは受け取り行のロック下なので、同時に読み取っても成功は1回。
func (u *PickupUsecase) RedeemToken(ctx context.Context, storeBranchID string, token string) (out RedeemOutput, err error) {
	ctx, done := startOp(ctx, u.rec, "redeem_token", storeBranchID)
	defer func() { done(err) }()

	if strings.TrimSpace(storeBranchID) == "" {
		return RedeemOutput{}, validationError("branch_id required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return RedeemOutput{}, validationError("qr_code required")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		pickup, err := r.Pickups().LockByToken(ctx, token)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("invalid pickup code")
		}
		if err != nil {
			return dbError(err)
		}
		if pickup.Complete {
			return conflict("pickup has already been completed")
		}

		details, err := r.ClaimItems().ListDetailsByClaimIDs(ctx, []string{pickup.ClaimID})
		if err != nil {
			return dbError(err)
		}
		if len(details) == 0 {
			return notFound("no items found for this claim")
		}
		//全明細が自店舗のものか
		for _, d := range details {
			if d.StoreBranchID != storeBranchID {
				return forbidden("pickup is for a different branch")
			}
		}

		claim, err := r.Claims().FindByID(ctx, pickup.ClaimID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("claim not found")
		}
		if err != nil {
			return dbError(err)
		}
		charityName := unknownCharity
		branches, err := r.Branches().FindByIDs(ctx, []string{claim.BranchID})
		if err != nil {
			return dbError(err)
		}
		if b, ok := branches[claim.BranchID]; ok {
			charityName = b.DisplayName()
		}

		now := u.clock.Now()
		if err := r.Pickups().MarkComplete(ctx, pickup.ID, storeBranchID, now); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return conflict("pickup has already been completed")
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorBranchID: storeBranchID,
			Action:        model.AuditActionRedeemPickup,
			ResourceType:  model.AuditResourcePickup,
			ResourceID:    pickup.ID,
			BeforeJSON:    auditJSON(map[string]bool{"complete": false}),
			AfterJSON:     auditJSON(map[string]bool{"complete": true}),
			CreatedAt:     now,
		}); err != nil {
			return dbError(err)
		}

		items := make([]PickupItemOutput, 0, len(details))
		for _, d := range details {
			items = append(items, PickupItemOutput{ProductName: d.ProductName, Quantity: d.Quantity})
		}
		out = RedeemOutput{
			PickupID:        pickup.ID,
			ClaimID:         pickup.ClaimID,
			Success:         true,
			Message:         "Pickup verified! Please give " + charityName + " their items.",
			CharityBranchID: claim.BranchID,
			CharityName:     charityName,
			Items:           items,
		}
		return nil
	})
	if err != nil {
		return RedeemOutput{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("pickup_id", out.PickupID).
		Str("claim_id", out.ClaimID).
		Msg("pickup redeemed")
	return out, nil
}

type MyPickupOutput struct {
	ClaimID        string     `json:"claim_id"`
	Approved       bool       `json:"approved"`
	Complete       bool       `json:"complete"`
	OrgName        string     `json:"org_name"`
	BranchName     string     `json:"branch_name"`
	BranchLocation string     `json:"branch_location"`
	TotalItems     int64      `json:"total_items"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

// チャリティの承認済みクレームと受け取り状況（承認が新しい順）
func (u *PickupUsecase) ListMyPickups(ctx context.Context, charityBranchID string) ([]MyPickupOutput, error) {
	if strings.TrimSpace(charityBranchID) == "" {
		return nil, validationError("branch_id required")
	}

	claims, err := u.claims.ListApprovedForCharity(ctx, charityBranchID)
	if err != nil {
		return nil, dbError(err)
	}
	if len(claims) == 0 {
		return []MyPickupOutput{}, nil
	}

	claimIDs := make([]string, 0, len(claims))
	for _, c := range claims {
		claimIDs = append(claimIDs, c.ID)
	}

	pickups, err := u.pickups.ListByClaimIDs(ctx, claimIDs)
	if err != nil {
		return nil, dbError(err)
	}
	completeByClaim := make(map[string]bool, len(pickups))
	for _, p := range pickups {
		completeByClaim[p.ClaimID] = p.Complete
	}

	details, err := u.claimItems.ListDetailsByClaimIDs(ctx, claimIDs)
	if err != nil {
		return nil, dbError(err)
	}
	totals := map[string]int64{}
	storeByClaim := map[string]string{}
	storeIDs := []string{}
	for _, d := range details {
		totals[d.ClaimID] += d.Quantity
		if _, ok := storeByClaim[d.ClaimID]; !ok {
			storeByClaim[d.ClaimID] = d.StoreBranchID
			storeIDs = append(storeIDs, d.StoreBranchID)
		}
	}

	branches, err := u.branches.FindByIDs(ctx, uniqueStrings(storeIDs))
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]MyPickupOutput, 0, len(claims))
	for _, c := range claims {
		b := branches[storeByClaim[c.ID]]
		out = append(out, MyPickupOutput{
			ClaimID:        c.ID,
			Approved:       c.Approved,
			Complete:       completeByClaim[c.ID],
			OrgName:        b.OrgName,
			BranchName:     b.BranchName,
			BranchLocation: b.Location,
			TotalItems:     totals[c.ID],
			ApprovedAt:     c.ApprovedAt,
		})
	}
	return out, nil
}
