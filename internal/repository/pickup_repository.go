package repository

import (
	"context"
	"time"

	"wastenot/internal/domain/model"
)

type PickupRepository interface {
	// claim_id / token が重複したら ErrDuplicate
	Create(ctx context.Context, pickup model.Pickup) error

	// トークンで FOR UPDATE
	LockByToken(ctx context.Context, token string) (model.Pickup, error)

	FindByClaimID(ctx context.Context, claimID string) (model.Pickup, error)
	ListByClaimIDs(ctx context.Context, claimIDs []string) ([]model.Pickup, error)
	MarkComplete(ctx context.Context, pickupID string, completedBy string, at time.Time) error
}
