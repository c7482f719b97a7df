package model

// 組織のブランチ（店舗・チャリティ）。表示用の名前だけ持つ。
type Branch struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"branch_id"`
	OrgName    string `gorm:"type:varchar(255);not null" json:"org_name"`
	BranchName string `gorm:"type:varchar(255);not null" json:"branch_name"`
	Location   string `gorm:"type:varchar(255)" json:"branch_location"`
}

// "組織名 - ブランチ名"
func (b Branch) DisplayName() string {
	return b.OrgName + " - " + b.BranchName
}
