package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	OrderStateDraft     OrderState = "DRAFT"
	OrderStatePending   OrderState = "PENDING"
	OrderStateCompleted OrderState = "COMPLETED"
	OrderStateCancelled OrderState = "CANCELLED"
)

func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateDraft, OrderStatePending, OrderStateCompleted, OrderStateCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	CustomerID  uint64          `gorm:"not null;index" json:"customerId"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	State       OrderState      `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"state"`
	CancelledAt *time.Time      `json:"cancelledAt"`
	CreatedBy   *uint64         `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Archivable

	// Relations
	Customer Customer    `gorm:"foreignKey:CustomerID" json:"customer"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
}

// OrderItem is owned by its order and never addressed on its own. Price is
// the product price captured when the item was validated.
type OrderItem struct {
	ID        uint64          `gorm:"primarykey" json:"id"`
	OrderID   uint64          `gorm:"not null;index" json:"orderId"`
	ProductID uint64          `gorm:"not null;index" json:"productId"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CreatedAt time.Time       `json:"createdAt"`

	// Relations
	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

// LineTotal is quantity times the snapshotted price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the line totals of items.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
