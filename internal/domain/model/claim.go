package model

import "time"

// チャリティ側のクレーム。承認は一度だけ、戻らない。
type Claim struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"claim_id"`
	BranchID   string     `gorm:"type:uuid;not null;index" json:"branch_id"`
	Approved   bool       `gorm:"not null;default:false;index" json:"approved"`
	ApprovedBy *string    `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// クレーム時点で明細から確保した数量。作成後は不変。
type ClaimItem struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"claim_item_id"`
	ClaimID    string    `gorm:"type:uuid;not null;index" json:"claim_id"`
	LineItemID string    `gorm:"type:uuid;not null;index" json:"listing_line_item_id"`
	Quantity   int64     `gorm:"not null;check:chk_claim_item_quantity,quantity >= 0" json:"quantity"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Claim    *Claim    `gorm:"foreignKey:ClaimID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	LineItem *LineItem `gorm:"foreignKey:LineItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// 一覧・受け取り確認用に明細と商品・出品ブランチを結合したもの
type ClaimItemDetail struct {
	ClaimID       string
	LineItemID    string
	Quantity      int64
	ProductID     string
	ProductName   string
	ListingID     string
	StoreBranchID string
	Remaining     int64
}
