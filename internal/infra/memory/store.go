// Package memory はリポジトリ契約のインメモリ実装。
// トランザクションは1本ずつ直列に実行し、エラー時はスナップショットへ戻す。
// DBなしでusecase/handlerのテストを回すためのもの。
package memory

import (
	"context"
	"sync"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"
)

type state struct {
	branches    map[string]model.Branch
	products    map[string]model.Product
	listings    map[string]model.Listing
	lineItems   map[string]model.LineItem
	claims      map[string]model.Claim
	claimItems  []model.ClaimItem
	pickups     map[string]model.Pickup
	adjustments []model.InventoryAdjustment
	auditLogs   []model.AuditLog
}

func newState() *state {
	return &state{
		branches:  map[string]model.Branch{},
		products:  map[string]model.Product{},
		listings:  map[string]model.Listing{},
		lineItems: map[string]model.LineItem{},
		claims:    map[string]model.Claim{},
		pickups:   map[string]model.Pickup{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.lineItems {
		c.lineItems[k] = v
	}
	for k, v := range s.claims {
		c.claims[k] = v
	}
	for k, v := range s.pickups {
		c.pickups[k] = v
	}
	c.claimItems = append([]model.ClaimItem(nil), s.claimItems...)
	c.adjustments = append([]model.InventoryAdjustment(nil), s.adjustments...)
	c.auditLogs = append([]model.AuditLog(nil), s.auditLogs...)
	return c
}

type Store struct {
	txMu sync.Mutex // トランザクションは1本ずつ
	mu   sync.Mutex // dataの読み書き
	data *state

	lockLog  []string
	failures map[string]error
}

func New() *Store {
	return &Store{
		data:     newState(),
		failures: map[string]error{},
	}
}

// WithinTx は repo.TransactionManager
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(&Repos{s: s, inTx: true}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// トランザクション外の読み取り用
func (s *Store) Reads() *Repos {
	return &Repos{s: s}
}

// op（例: "pickups.create"）の次の呼び出しをerrで失敗させる
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

// 明細行ロックの順番（LockLineItem の呼び出し順）
func (s *Store) LockLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lockLog...)
}

func (s *Store) ResetLockLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLog = nil
}

// ---- seed / snapshot ----

func (s *Store) AddBranch(b model.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.branches[b.ID] = b
}

func (s *Store) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

func (s *Store) LineItem(id string) (model.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	li, ok := s.data.lineItems[id]
	return li, ok
}

func (s *Store) LineItemsOf(listingID string) []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.LineItem{}
	for _, li := range s.data.lineItems {
		if li.ListingID == listingID {
			out = append(out, li)
		}
	}
	sortLineItems(out)
	return out
}

func (s *Store) Claim(id string) (model.Claim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.claims[id]
	return c, ok
}

func (s *Store) ClaimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.claims)
}

func (s *Store) ClaimItems() []model.ClaimItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ClaimItem(nil), s.data.claimItems...)
}

func (s *Store) Pickups() []model.Pickup {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Pickup, 0, len(s.data.pickups))
	for _, p := range s.data.pickups {
		out = append(out, p)
	}
	return out
}

func (s *Store) Adjustments() []model.InventoryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.data.adjustments...)
}

func (s *Store) AuditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.data.auditLogs...)
}

// Repos は TxRepos と、トランザクション外で使う読み取りリポジトリ
type Repos struct {
	s    *Store
	inTx bool
}

func (r *Repos) Listings() repo.ListingRepository     { return &listingRepo{r} }
func (r *Repos) Inventory() repo.InventoryRepository  { return &inventoryRepo{r} }
func (r *Repos) Claims() repo.ClaimRepository         { return &claimRepo{r} }
func (r *Repos) ClaimItems() repo.ClaimItemRepository { return &claimItemRepo{r} }
func (r *Repos) Pickups() repo.PickupRepository       { return &pickupRepo{r} }
func (r *Repos) Branches() repo.BranchRepository      { return &branchRepo{r} }
func (r *Repos) AuditLogs() repo.AuditLogRepository   { return &auditLogRepo{r} }
func (r *Repos) Products() repo.ProductRepository     { return &productRepo{r} }
func (r *Repos) Metrics() repo.MetricsRepository      { return &metricsRepo{r} }

// トランザクション外の呼び出しは実行中のトランザクションを待つ
func (r *Repos) do(op string, fn func(d *state) error) error {
	if !r.inTx {
		r.s.txMu.Lock()
		defer r.s.txMu.Unlock()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(op); err != nil {
		return err
	}
	return fn(r.s.data)
}
