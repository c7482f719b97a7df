package model

import "time"

// 店舗ブランチが出品した余剰食品のリスティング。削除はしない。
type Listing struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"listing_id"`
	BranchID  string    `gorm:"type:uuid;not null;index" json:"branch_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// リスティングの明細。Remainingがクレーム可能な残数。
type LineItem struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"listing_line_item_id"`
	ListingID string `gorm:"type:uuid;not null;index" json:"listing_id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`

	//出品時の数量（変更しない）
	Quantity int64 `gorm:"not null;check:chk_line_item_quantity,quantity >= 0" json:"quantity"`

	//残数。マイナスにはならない
	Remaining int64 `gorm:"not null;check:chk_line_item_remaining,remaining >= 0" json:"remaining"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	//FK制約用（読み込みはしない）
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (LineItem) TableName() string { return "listing_line_items" }

// 残数1以上の明細（一覧表示用）
type AvailableItem struct {
	ListingID   string
	LineItemID  string
	ProductID   string
	ProductName string
	Remaining   int64
}
