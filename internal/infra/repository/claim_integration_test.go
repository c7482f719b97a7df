package repository_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"wastenot/internal/config"
	"wastenot/internal/domain/model"
	"wastenot/internal/infra/db"
	infraRepo "wastenot/internal/infra/repository"
	"wastenot/internal/infra/token"
	"wastenot/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// =====================
// Postgres（TEST_DATABASE_URL がある時だけ）
// =====================

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type clock struct{}

func (clock) Now() time.Time { return time.Now().UTC() }

type stack struct {
	db       *gorm.DB
	listings *usecase.ListingUsecase
	claims   *usecase.ClaimUsecase
	approval *usecase.ApprovalUsecase
	pickups  *usecase.PickupUsecase

	store   model.Branch
	charity model.Branch
	product model.Product
}

func newStack(t *testing.T) *stack {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        url,
		DBPoolMin:          2,
		DBPoolMax:          20,
		DBConnMaxLifetime:  time.Hour,
		DBStatementTimeout: 5 * time.Second,
		DBLockTimeout:      3 * time.Second,
	}
	gormDB, err := db.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })
	require.NoError(t, db.Migrate(gormDB))

	s := &stack{
		db:      gormDB,
		store:   model.Branch{ID: uuid.NewString(), OrgName: "FreshMart", BranchName: "IT"},
		charity: model.Branch{ID: uuid.NewString(), OrgName: "City Food Bank", BranchName: "IT"},
	}
	s.product = model.Product{ID: uuid.NewString(), BranchID: s.store.ID, Name: "Bread"}
	require.NoError(t, gormDB.Create(&s.store).Error)
	require.NoError(t, gormDB.Create(&s.charity).Error)
	require.NoError(t, gormDB.Create(&s.product).Error)

	txm := infraRepo.NewTxManagerGorm(gormDB, 5*time.Second)
	listings := infraRepo.NewListingGormRepository(gormDB)
	inventory := infraRepo.NewInventoryGormRepository(gormDB)
	products := infraRepo.NewProductGormRepository(gormDB)
	branches := infraRepo.NewBranchGormRepository(gormDB)
	claims := infraRepo.NewClaimGormRepository(gormDB)
	claimItems := infraRepo.NewClaimItemGormRepository(gormDB)
	pickups := infraRepo.NewPickupGormRepository(gormDB)

	s.listings = usecase.NewListingUsecase(txm, listings, inventory, products, branches, uuidGen{}, clock{}, usecase.NopRecorder{})
	s.claims = usecase.NewClaimUsecase(txm, claims, claimItems, branches, uuidGen{}, clock{}, usecase.NopRecorder{})
	s.approval = usecase.NewApprovalUsecase(txm, claims, claimItems, pickups, branches, token.NewGenerator(), uuidGen{}, clock{}, usecase.NopRecorder{})
	s.pickups = usecase.NewPickupUsecase(txm, claims, claimItems, pickups, branches, clock{}, usecase.NopRecorder{})
	return s
}

func (s *stack) lineItem(t *testing.T, listingID string) model.LineItem {
	t.Helper()

	var li model.LineItem
	require.NoError(t, s.db.Where("listing_id = ?", listingID).First(&li).Error)
	return li
}

func TestPostgres_ConcurrentClaimsNeverOverdraw(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	out, err := s.listings.CreateListing(ctx, s.store.ID, usecase.CreateListingInput{Items: []usecase.ListingItemInput{{ProductID: s.product.ID, Quantity: 10}}})
	require.NoError(t, err)
	li := s.lineItem(t, out.ListingID)

	var ok int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := s.claims.CreateClaim(ctx, s.charity.ID, usecase.CreateClaimInput{Items: []usecase.ClaimItemInput{{LineItemID: li.ID, Quantity: 1}}})
			if err == nil {
				atomic.AddInt64(&ok, 1)
				return nil
			}
			if usecase.IsKind(err, usecase.KindConflict) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(10), ok)
	after := s.lineItem(t, out.ListingID)
	assert.Equal(t, int64(0), after.Remaining)

	var claimed int64
	require.NoError(t, s.db.Model(&model.ClaimItem{}).
		Where("line_item_id = ?", li.ID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&claimed).Error)
	assert.Equal(t, after.Quantity, after.Remaining+claimed)
}

func TestPostgres_ApproveAndRedeemOnce(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	out, err := s.listings.CreateListing(ctx, s.store.ID, usecase.CreateListingInput{Items: []usecase.ListingItemInput{{ProductID: s.product.ID, Quantity: 3}}})
	require.NoError(t, err)
	li := s.lineItem(t, out.ListingID)

	claim, err := s.claims.CreateClaim(ctx, s.charity.ID, usecase.CreateClaimInput{Items: []usecase.ClaimItemInput{{LineItemID: li.ID, Quantity: 2}}})
	require.NoError(t, err)

	var approvedOK int64
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			if _, err := s.approval.ApproveClaim(ctx, s.store.ID, claim.ClaimID); err == nil {
				atomic.AddInt64(&approvedOK, 1)
			} else if !usecase.IsKind(err, usecase.KindConflict) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), approvedOK)

	ticket, err := s.approval.DescribePickup(ctx, s.charity.ID, claim.ClaimID)
	require.NoError(t, err)

	var redeemedOK int64
	var g2 errgroup.Group
	for i := 0; i < 4; i++ {
		g2.Go(func() error {
			if _, err := s.pickups.RedeemToken(ctx, s.store.ID, ticket.Token); err == nil {
				atomic.AddInt64(&redeemedOK, 1)
			} else if !usecase.IsKind(err, usecase.KindConflict) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g2.Wait())
	assert.Equal(t, int64(1), redeemedOK)
}
