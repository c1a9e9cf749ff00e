package models

// Role is a row of the fixed role table. Capabilities live in the policy package.
type Role struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}
