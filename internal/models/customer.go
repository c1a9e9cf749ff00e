package models

import "time"

type Customer struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Address   string    `gorm:"type:varchar(255);not null" json:"address"`
	City      string    `gorm:"type:varchar(100);not null" json:"city"`
	Country   *string   `gorm:"type:varchar(100)" json:"country"`
	Phone     *string   `gorm:"type:varchar(50)" json:"phone"`
	CreatedBy *uint64   `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archivable
}
