package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"wastenot/internal/domain/model"
	"wastenot/internal/infra/memory"
	"wastenot/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// 部品のフェイク
// =====================

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (g *seqTokens) NewToken() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("WNtest%04d", g.n), nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) Record(op string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[op+"/"+outcome]++
}

func (r *countingRecorder) Count(op string, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op+"/"+outcome]
}

// =====================
// fixture
// =====================

var (
	storeA = model.Branch{ID: "0b7e3c1a-1111-4a4a-9a9a-000000000001", OrgName: "FreshMart", BranchName: "Downtown", Location: "1 Main St"}
	storeB = model.Branch{ID: "0b7e3c1a-1111-4a4a-9a9a-000000000002", OrgName: "GreenGrocer", BranchName: "Harbour", Location: "9 Quay Rd"}
	charA  = model.Branch{ID: "0b7e3c1a-2222-4a4a-9a9a-000000000001", OrgName: "City Food Bank", BranchName: "North"}
	charB  = model.Branch{ID: "0b7e3c1a-2222-4a4a-9a9a-000000000002", OrgName: "Shelter Kitchen", BranchName: "East"}

	bread  = model.Product{ID: "5d0c6a2e-3333-4b4b-8c8c-000000000001", BranchID: storeA.ID, Name: "Bread"}
	milk   = model.Product{ID: "5d0c6a2e-3333-4b4b-8c8c-000000000002", BranchID: storeA.ID, Name: "Milk"}
	apples = model.Product{ID: "5d0c6a2e-3333-4b4b-8c8c-000000000003", BranchID: storeB.ID, Name: "Apples"}
)

type fixture struct {
	store  *memory.Store
	clock  *fakeClock
	tokens *seqTokens
	rec    *countingRecorder

	listings  *usecase.ListingUsecase
	claims    *usecase.ClaimUsecase
	approval  *usecase.ApprovalUsecase
	pickups   *usecase.PickupUsecase
	analytics *usecase.AnalyticsUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.New()
	for _, b := range []model.Branch{storeA, storeB, charA, charB} {
		s.AddBranch(b)
	}
	for _, p := range []model.Product{bread, milk, apples} {
		s.AddProduct(p)
	}

	clock := newFakeClock()
	tokens := &seqTokens{}
	rec := &countingRecorder{}
	r := s.Reads()

	return &fixture{
		store:  s,
		clock:  clock,
		tokens: tokens,
		rec:    rec,

		listings:  usecase.NewListingUsecase(s, r.Listings(), r.Inventory(), r.Products(), r.Branches(), uuidGen{}, clock, rec),
		claims:    usecase.NewClaimUsecase(s, r.Claims(), r.ClaimItems(), r.Branches(), uuidGen{}, clock, rec),
		approval:  usecase.NewApprovalUsecase(s, r.Claims(), r.ClaimItems(), r.Pickups(), r.Branches(), tokens, uuidGen{}, clock, rec),
		pickups:   usecase.NewPickupUsecase(s, r.Claims(), r.ClaimItems(), r.Pickups(), r.Branches(), clock, rec),
		analytics: usecase.NewAnalyticsUsecase(r.Metrics(), clock),
	}
}

// リスティングを作って product_id -> line_item_id を返す
func (f *fixture) listing(t *testing.T, branch model.Branch, items ...usecase.ListingItemInput) (string, map[string]string) {
	t.Helper()

	out, err := f.listings.CreateListing(context.Background(), branch.ID, usecase.CreateListingInput{Items: items})
	require.NoError(t, err)

	ids := map[string]string{}
	for _, li := range f.store.LineItemsOf(out.ListingID) {
		ids[li.ProductID] = li.ID
	}
	return out.ListingID, ids
}

func (f *fixture) claim(t *testing.T, charity model.Branch, items ...usecase.ClaimItemInput) string {
	t.Helper()

	out, err := f.claims.CreateClaim(context.Background(), charity.ID, usecase.CreateClaimInput{Items: items})
	require.NoError(t, err)
	return out.ClaimID
}

func (f *fixture) remaining(t *testing.T, lineItemID string) int64 {
	t.Helper()

	li, ok := f.store.LineItem(lineItemID)
	require.True(t, ok, "line item %s missing", lineItemID)
	return li.Remaining
}

func (f *fixture) tokenOf(t *testing.T, claimID string) string {
	t.Helper()

	for _, p := range f.store.Pickups() {
		if p.ClaimID == claimID {
			return p.Token
		}
	}
	t.Fatalf("no pickup for claim %s", claimID)
	return ""
}

// 明細ごとに remaining + クレーム済み合計 == quantity
func assertConserved(t *testing.T, s *memory.Store, lineItemIDs ...string) {
	t.Helper()

	claimed := map[string]int64{}
	for _, ci := range s.ClaimItems() {
		claimed[ci.LineItemID] += ci.Quantity
	}
	for _, id := range lineItemIDs {
		li, ok := s.LineItem(id)
		require.True(t, ok)
		assert.Equal(t, li.Quantity, li.Remaining+claimed[id], "line item %s", id)
	}
}

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) {
	t.Helper()

	if assert.Error(t, err) {
		assert.Equal(t, kind, usecase.KindOf(err), "err=%v", err)
	}
}

func item(productID string, qty int64) usecase.ListingItemInput {
	return usecase.ListingItemInput{ProductID: productID, Quantity: qty}
}

func take(lineItemID string, qty int64) usecase.ClaimItemInput {
	return usecase.ClaimItemInput{LineItemID: lineItemID, Quantity: qty}
}
