package model

import "time"

// 承認時に発行される受け取り。Tokenは一度だけ使える。
type Pickup struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"pickup_id"`
	ClaimID     string     `gorm:"type:uuid;not null;uniqueIndex" json:"claim_id"`
	Token       string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	Complete    bool       `gorm:"not null;default:false" json:"complete"`
	CompletedBy *string    `gorm:"type:uuid" json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
