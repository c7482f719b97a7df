package model

type Product struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"product_id"`
	BranchID string `gorm:"type:uuid;not null;index" json:"branch_id"`
	Name     string `gorm:"type:varchar(255);not null" json:"product_name"`
}
