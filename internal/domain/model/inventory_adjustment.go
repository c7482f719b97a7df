package model

import "time"

//明細の手動修正の履歴（クレーム以外で残数が変わったとき）

type InventoryAdjustment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LineItemID string    `gorm:"type:uuid;not null;index" json:"listing_line_item_id"`
	BranchID   string    `gorm:"type:uuid;not null;index" json:"branch_id"`
	Delta      int64     `gorm:"not null" json:"delta"`
	Reason     string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
