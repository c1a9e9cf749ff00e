package models

import "time"

type User struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Username       string     `gorm:"type:varchar(100);not null;index" json:"username"`
	FirstName      string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName       *string    `gorm:"type:varchar(100)" json:"lastName"`
	Email          string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Department     *string    `gorm:"type:varchar(100)" json:"department"`
	PasswordHash   string     `gorm:"type:varchar(255);not null" json:"-"`
	RoleID         uint64     `gorm:"not null" json:"roleId"`
	Active         bool       `gorm:"not null;default:true" json:"active"`
	PasswordChange bool       `gorm:"not null;default:false" json:"passwordChange"`
	LastLoginDate  *time.Time `json:"lastLoginDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Archivable

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role"`
}
