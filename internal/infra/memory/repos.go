package memory

import (
	"context"
	"sort"
	"time"

	"wastenot/internal/domain/model"
	repo "wastenot/internal/repository"
)

func sortLineItems(items []model.LineItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

// ---- listings ----

type listingRepo struct{ r *Repos }

func (x *listingRepo) Create(ctx context.Context, l model.Listing) error {
	return x.r.do("listings.create", func(d *state) error {
		if _, ok := d.listings[l.ID]; ok {
			return repo.ErrDuplicate
		}
		d.listings[l.ID] = l
		return nil
	})
}

func (x *listingRepo) LockOwned(ctx context.Context, listingID string, branchID string) (model.Listing, error) {
	var out model.Listing
	err := x.r.do("listings.lock_owned", func(d *state) error {
		l, ok := d.listings[listingID]
		if !ok || l.BranchID != branchID {
			return repo.ErrNotFound
		}
		out = l
		return nil
	})
	return out, err
}

func (x *listingRepo) List(ctx context.Context, f repo.ListingFilter) ([]model.Listing, error) {
	out := []model.Listing{}
	err := x.r.do("listings.list", func(d *state) error {
		for _, l := range d.listings {
			if f.BranchID != nil && l.BranchID != *f.BranchID {
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

// ---- inventory ----

type inventoryRepo struct{ r *Repos }

func (x *inventoryRepo) CreateBulk(ctx context.Context, items []model.LineItem) error {
	return x.r.do("inventory.create_bulk", func(d *state) error {
		for _, li := range items {
			if li.Remaining < 0 || li.Quantity < 0 {
				return errCheckViolation
			}
			d.lineItems[li.ID] = li
		}
		return nil
	})
}

func (x *inventoryRepo) LockLineItem(ctx context.Context, lineItemID string) (model.LineItem, error) {
	var out model.LineItem
	err := x.r.do("inventory.lock_line_item", func(d *state) error {
		x.r.s.lockLog = append(x.r.s.lockLog, lineItemID)
		li, ok := d.lineItems[lineItemID]
		if !ok {
			return repo.ErrNotFound
		}
		out = li
		return nil
	})
	return out, err
}

func (x *inventoryRepo) LockListingItems(ctx context.Context, listingID string) ([]model.LineItem, error) {
	out := []model.LineItem{}
	err := x.r.do("inventory.lock_listing_items", func(d *state) error {
		for _, li := range d.lineItems {
			if li.ListingID == listingID {
				out = append(out, li)
			}
		}
		return nil
	})
	sortLineItems(out)
	return out, err
}

func (x *inventoryRepo) DecreaseRemainingIfEnough(ctx context.Context, lineItemID string, qty int64) (bool, error) {
	var ok bool
	err := x.r.do("inventory.decrease", func(d *state) error {
		li, found := d.lineItems[lineItemID]
		if !found || li.Remaining < qty {
			return nil
		}
		li.Remaining -= qty
		d.lineItems[lineItemID] = li
		ok = true
		return nil
	})
	return ok, err
}

func (x *inventoryRepo) SetRemaining(ctx context.Context, lineItemID string, remaining int64) error {
	return x.r.do("inventory.set_remaining", func(d *state) error {
		li, ok := d.lineItems[lineItemID]
		if !ok {
			return repo.ErrNotFound
		}
		if remaining < 0 {
			return errCheckViolation
		}
		li.Remaining = remaining
		d.lineItems[lineItemID] = li
		return nil
	})
}

func (x *inventoryRepo) ZeroRemaining(ctx context.Context, listingID string) (int64, error) {
	var n int64
	err := x.r.do("inventory.zero_remaining", func(d *state) error {
		for id, li := range d.lineItems {
			if li.ListingID != listingID {
				continue
			}
			li.Remaining = 0
			d.lineItems[id] = li
			n++
		}
		return nil
	})
	return n, err
}

func (x *inventoryRepo) ListAvailable(ctx context.Context, listingIDs []string) ([]model.AvailableItem, error) {
	out := []model.AvailableItem{}
	want := toSet(listingIDs)
	err := x.r.do("inventory.list_available", func(d *state) error {
		for _, li := range d.lineItems {
			if _, ok := want[li.ListingID]; !ok || li.Remaining < 1 {
				continue
			}
			//INNER JOIN products と同じく商品がなければ落とす
			p, ok := d.products[li.ProductID]
			if !ok {
				continue
			}
			out = append(out, model.AvailableItem{
				ListingID:   li.ListingID,
				LineItemID:  li.ID,
				ProductID:   li.ProductID,
				ProductName: p.Name,
				Remaining:   li.Remaining,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ListingID != out[j].ListingID {
			return out[i].ListingID < out[j].ListingID
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out, err
}

func (x *inventoryRepo) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return x.r.do("inventory.create_adjustment", func(d *state) error {
		adj.ID = int64(len(d.adjustments) + 1)
		d.adjustments = append(d.adjustments, adj)
		return nil
	})
}

// ---- claims ----

type claimRepo struct{ r *Repos }

func (x *claimRepo) Create(ctx context.Context, c model.Claim) error {
	return x.r.do("claims.create", func(d *state) error {
		if _, ok := d.claims[c.ID]; ok {
			return repo.ErrDuplicate
		}
		d.claims[c.ID] = c
		return nil
	})
}

func (x *claimRepo) FindByID(ctx context.Context, claimID string) (model.Claim, error) {
	var out model.Claim
	err := x.r.do("claims.find_by_id", func(d *state) error {
		c, ok := d.claims[claimID]
		if !ok {
			return repo.ErrNotFound
		}
		out = c
		return nil
	})
	return out, err
}

func (x *claimRepo) LockByID(ctx context.Context, claimID string) (model.Claim, error) {
	var out model.Claim
	err := x.r.do("claims.lock_by_id", func(d *state) error {
		c, ok := d.claims[claimID]
		if !ok {
			return repo.ErrNotFound
		}
		out = c
		return nil
	})
	return out, err
}

func (x *claimRepo) MarkApproved(ctx context.Context, claimID string, approvedBy string, at time.Time) error {
	return x.r.do("claims.mark_approved", func(d *state) error {
		c, ok := d.claims[claimID]
		if !ok || c.Approved {
			return repo.ErrNotFound
		}
		by := approvedBy
		t := at
		c.Approved = true
		c.ApprovedBy = &by
		c.ApprovedAt = &t
		d.claims[claimID] = c
		return nil
	})
}

func (x *claimRepo) ListPendingForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error) {
	out := []model.Claim{}
	err := x.r.do("claims.list_pending", func(d *state) error {
		for _, c := range d.claims {
			if !c.Approved && touchesStore(d, c.ID, storeBranchID) {
				out = append(out, c)
			}
		}
		return nil
	})
	sortByCreatedDesc(out)
	return out, err
}

func (x *claimRepo) ListAwaitingPickupForStore(ctx context.Context, storeBranchID string) ([]model.Claim, error) {
	out := []model.Claim{}
	err := x.r.do("claims.list_awaiting", func(d *state) error {
		for _, c := range d.claims {
			if !c.Approved || !touchesStore(d, c.ID, storeBranchID) {
				continue
			}
			for _, p := range d.pickups {
				if p.ClaimID == c.ID && !p.Complete {
					out = append(out, c)
					break
				}
			}
		}
		return nil
	})
	sortByApprovedDesc(out)
	return out, err
}

func (x *claimRepo) ListApprovedForCharity(ctx context.Context, charityBranchID string) ([]model.Claim, error) {
	out := []model.Claim{}
	err := x.r.do("claims.list_approved", func(d *state) error {
		for _, c := range d.claims {
			if c.Approved && c.BranchID == charityBranchID {
				out = append(out, c)
			}
		}
		return nil
	})
	sortByApprovedDesc(out)
	return out, err
}

func touchesStore(d *state, claimID string, storeBranchID string) bool {
	for _, ci := range d.claimItems {
		if ci.ClaimID != claimID {
			continue
		}
		li := d.lineItems[ci.LineItemID]
		if d.listings[li.ListingID].BranchID == storeBranchID {
			return true
		}
	}
	return false
}

func sortByCreatedDesc(cs []model.Claim) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID > cs[j].ID
	})
}

func sortByApprovedDesc(cs []model.Claim) {
	at := func(c model.Claim) time.Time {
		if c.ApprovedAt == nil {
			return time.Time{}
		}
		return *c.ApprovedAt
	}
	sort.Slice(cs, func(i, j int) bool {
		if !at(cs[i]).Equal(at(cs[j])) {
			return at(cs[i]).After(at(cs[j]))
		}
		return cs[i].ID > cs[j].ID
	})
}

// ---- claim items ----

type claimItemRepo struct{ r *Repos }

func (x *claimItemRepo) CreateBulk(ctx context.Context, claimID string, items []model.ClaimItem) error {
	return x.r.do("claim_items.create_bulk", func(d *state) error {
		for _, ci := range items {
			ci.ClaimID = claimID
			d.claimItems = append(d.claimItems, ci)
		}
		return nil
	})
}

func (x *claimItemRepo) ListDetailsByClaimIDs(ctx context.Context, claimIDs []string) ([]model.ClaimItemDetail, error) {
	out := []model.ClaimItemDetail{}
	want := toSet(claimIDs)
	type row struct {
		detail model.ClaimItemDetail
		id     string
	}
	rows := []row{}
	err := x.r.do("claim_items.list_details", func(d *state) error {
		for _, ci := range d.claimItems {
			if _, ok := want[ci.ClaimID]; !ok {
				continue
			}
			//明細・商品・リスティングのどれかが欠けたら結合結果に出ない
			li, ok := d.lineItems[ci.LineItemID]
			if !ok {
				continue
			}
			p, ok := d.products[li.ProductID]
			if !ok {
				continue
			}
			l, ok := d.listings[li.ListingID]
			if !ok {
				continue
			}
			rows = append(rows, row{id: ci.ID, detail: model.ClaimItemDetail{
				ClaimID:       ci.ClaimID,
				LineItemID:    ci.LineItemID,
				Quantity:      ci.Quantity,
				ProductID:     li.ProductID,
				ProductName:   p.Name,
				ListingID:     li.ListingID,
				StoreBranchID: l.BranchID,
				Remaining:     li.Remaining,
			}})
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].detail, rows[j].detail
		if a.ClaimID != b.ClaimID {
			return a.ClaimID < b.ClaimID
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return rows[i].id < rows[j].id
	})
	for _, r := range rows {
		out = append(out, r.detail)
	}
	return out, err
}

func (x *claimItemRepo) CountForStore(ctx context.Context, claimID string, storeBranchID string) (int64, error) {
	var n int64
	err := x.r.do("claim_items.count_for_store", func(d *state) error {
		for _, ci := range d.claimItems {
			if ci.ClaimID != claimID {
				continue
			}
			li := d.lineItems[ci.LineItemID]
			if d.listings[li.ListingID].BranchID == storeBranchID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// ---- pickups ----

type pickupRepo struct{ r *Repos }

func (x *pickupRepo) Create(ctx context.Context, p model.Pickup) error {
	return x.r.do("pickups.create", func(d *state) error {
		for _, ex := range d.pickups {
			if ex.ClaimID == p.ClaimID || ex.Token == p.Token {
				return repo.ErrDuplicate
			}
		}
		d.pickups[p.ID] = p
		return nil
	})
}

func (x *pickupRepo) LockByToken(ctx context.Context, token string) (model.Pickup, error) {
	var out model.Pickup
	err := x.r.do("pickups.lock_by_token", func(d *state) error {
		for _, p := range d.pickups {
			if p.Token == token {
				out = p
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (x *pickupRepo) FindByClaimID(ctx context.Context, claimID string) (model.Pickup, error) {
	var out model.Pickup
	err := x.r.do("pickups.find_by_claim_id", func(d *state) error {
		for _, p := range d.pickups {
			if p.ClaimID == claimID {
				out = p
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (x *pickupRepo) ListByClaimIDs(ctx context.Context, claimIDs []string) ([]model.Pickup, error) {
	out := []model.Pickup{}
	want := toSet(claimIDs)
	err := x.r.do("pickups.list_by_claim_ids", func(d *state) error {
		for _, p := range d.pickups {
			if _, ok := want[p.ClaimID]; ok {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (x *pickupRepo) MarkComplete(ctx context.Context, pickupID string, completedBy string, at time.Time) error {
	return x.r.do("pickups.mark_complete", func(d *state) error {
		p, ok := d.pickups[pickupID]
		if !ok || p.Complete {
			return repo.ErrNotFound
		}
		by := completedBy
		t := at
		p.Complete = true
		p.CompletedBy = &by
		p.CompletedAt = &t
		d.pickups[pickupID] = p
		return nil
	})
}

// ---- branches / products / audit ----

type branchRepo struct{ r *Repos }

func (x *branchRepo) FindByIDs(ctx context.Context, branchIDs []string) (map[string]model.Branch, error) {
	out := map[string]model.Branch{}
	err := x.r.do("branches.find_by_ids", func(d *state) error {
		for _, id := range branchIDs {
			if b, ok := d.branches[id]; ok {
				out[id] = b
			}
		}
		return nil
	})
	return out, err
}

type productRepo struct{ r *Repos }

func (x *productRepo) ListByBranch(ctx context.Context, branchID string) ([]model.Product, error) {
	out := []model.Product{}
	err := x.r.do("products.list_by_branch", func(d *state) error {
		for _, p := range d.products {
			if p.BranchID == branchID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (x *productRepo) FindByIDs(ctx context.Context, productIDs []string) (map[string]model.Product, error) {
	out := map[string]model.Product{}
	err := x.r.do("products.find_by_ids", func(d *state) error {
		for _, id := range productIDs {
			if p, ok := d.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

type auditLogRepo struct{ r *Repos }

func (x *auditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	return x.r.do("audit_logs.create", func(d *state) error {
		log.ID = int64(len(d.auditLogs) + 1)
		d.auditLogs = append(d.auditLogs, log)
		return nil
	})
}

// ---- metrics ----

type metricsRepo struct{ r *Repos }

func (x *metricsRepo) BasicMetrics(ctx context.Context, storeBranchID string, from time.Time, to time.Time) (repo.BasicMetricsRow, error) {
	var row repo.BasicMetricsRow
	in := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }
	err := x.r.do("metrics.basic", func(d *state) error {
		for _, l := range d.listings {
			if l.BranchID != storeBranchID || !in(l.CreatedAt) {
				continue
			}
			row.ListingsCount++
			for _, li := range d.lineItems {
				if li.ListingID == l.ID {
					row.TotalItemsListed += li.Quantity
				}
			}
		}
		for _, p := range d.pickups {
			if !p.Complete || p.CompletedAt == nil || !in(*p.CompletedAt) {
				continue
			}
			counted := false
			for _, ci := range d.claimItems {
				if ci.ClaimID != p.ClaimID {
					continue
				}
				li := d.lineItems[ci.LineItemID]
				if d.listings[li.ListingID].BranchID != storeBranchID {
					continue
				}
				row.TotalItemsRescued += ci.Quantity
				counted = true
			}
			if counted {
				row.PickupsCompleted++
			}
		}
		return nil
	})
	return row, err
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
