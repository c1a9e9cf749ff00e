package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	// CreatedBy and UpdatedBy are lookup-only references to users.
	CreatedBy *uint64   `json:"createdBy"`
	UpdatedBy *uint64   `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archivable
}
