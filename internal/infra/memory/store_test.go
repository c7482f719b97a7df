package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wastenot/internal/domain/model"
	"wastenot/internal/infra/memory"
	repo "wastenot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storeID    = "0b7e3c1a-3333-4a4a-9a9a-000000000001"
	listingID  = "0b7e3c1a-3333-4a4a-9a9a-000000000010"
	breadID    = "0b7e3c1a-3333-4a4a-9a9a-000000000020"
	missingID  = "0b7e3c1a-3333-4a4a-9a9a-0000000000ff"
	keptItemID = "0b7e3c1a-3333-4a4a-9a9a-000000000031"
	lostItemID = "0b7e3c1a-3333-4a4a-9a9a-000000000032"
	claimID    = "0b7e3c1a-3333-4a4a-9a9a-000000000040"
)

// 商品行のない明細を直接入れる（DBならFKで弾かれる状態）
func seedOrphan(t *testing.T) *memory.Store {
	t.Helper()

	s := memory.New()
	s.AddProduct(model.Product{ID: breadID, BranchID: storeID, Name: "Bread"})
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	err := s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		ctx := context.Background()
		if err := r.Listings().Create(ctx, model.Listing{ID: listingID, BranchID: storeID, CreatedAt: now}); err != nil {
			return err
		}
		if err := r.Inventory().CreateBulk(ctx, []model.LineItem{
			{ID: keptItemID, ListingID: listingID, ProductID: breadID, Quantity: 5, Remaining: 5},
			{ID: lostItemID, ListingID: listingID, ProductID: missingID, Quantity: 5, Remaining: 5},
		}); err != nil {
			return err
		}
		if err := r.Claims().Create(ctx, model.Claim{ID: claimID, BranchID: storeID, CreatedAt: now}); err != nil {
			return err
		}
		return r.ClaimItems().CreateBulk(ctx, claimID, []model.ClaimItem{
			{ID: "ci-1", LineItemID: keptItemID, Quantity: 1},
			{ID: "ci-2", LineItemID: lostItemID, Quantity: 1},
		})
	})
	require.NoError(t, err)
	return s
}

// =====================
// 結合の形
// =====================

func TestListAvailable_DropsRowsWithoutProduct(t *testing.T) {
	s := seedOrphan(t)

	items, err := s.Reads().Inventory().ListAvailable(context.Background(), []string{listingID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keptItemID, items[0].LineItemID)
	assert.Equal(t, "Bread", items[0].ProductName)
}

func TestListDetailsByClaimIDs_DropsRowsWithoutProduct(t *testing.T) {
	s := seedOrphan(t)

	details, err := s.Reads().ClaimItems().ListDetailsByClaimIDs(context.Background(), []string{claimID})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, keptItemID, details[0].LineItemID)
	assert.Equal(t, storeID, details[0].StoreBranchID)
}

// =====================
// トランザクション
// =====================

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := memory.New()
	s.AddProduct(model.Product{ID: breadID, BranchID: storeID, Name: "Bread"})

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(r repo.TxRepos) error {
		if err := r.Listings().Create(context.Background(), model.Listing{ID: listingID, BranchID: storeID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	listings, err := s.Reads().Listings().List(context.Background(), repo.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestProducts_FindByIDs(t *testing.T) {
	s := memory.New()
	s.AddProduct(model.Product{ID: breadID, BranchID: storeID, Name: "Bread"})

	got, err := s.Reads().Products().FindByIDs(context.Background(), []string{breadID, missingID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bread", got[breadID].Name)
}
