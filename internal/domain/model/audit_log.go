package model

import "time"

// リスティング・クレーム・受け取りの状態遷移。
type AuditAction string

const (
	AuditActionCreateListing AuditAction = "CREATE_LISTING"
	//明細の手動修正
	AuditActionUpdateListing AuditAction = "UPDATE_LISTING"
	AuditActionCancelListing AuditAction = "CANCEL_LISTING"
	AuditActionCreateClaim   AuditAction = "CREATE_CLAIM"
	AuditActionApproveClaim  AuditAction = "APPROVE_CLAIM"
	AuditActionRedeemPickup  AuditAction = "REDEEM_PICKUP"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceListing AuditResourceType = "listing"
	AuditResourceClaim   AuditResourceType = "claim"
	AuditResourcePickup  AuditResourceType = "pickup"
)

// 監査ログ。
// 「どのブランチが」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したブランチ
	ActorBranchID string `gorm:"type:uuid;not null;index" json:"actor_branch_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:uuid;not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
