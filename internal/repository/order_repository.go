package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository is a GORM implementation of OrderRepository
type GormOrderRepository struct {
	*ArchivableStore[models.Order]
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository. Orders are loaded with
// their customer and items, and each item with its product, archived or not.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{
		ArchivableStore: newArchivableStore[models.Order](db, "orders", "Customer", "Items", "Items.Product"),
		db:              db,
	}
}

// CreateWithItems inserts the order row and all of its items atomically
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

// ReplaceItems swaps the full item set and stores the recomputed total atomically
func (r *GormOrderRepository) ReplaceItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}

		order.Total = models.ComputeTotal(items)
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
			"total":        order.Total,
			"state":        order.State,
			"cancelled_at": order.CancelledAt,
		}).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

// UpdateState writes the order's state columns only
func (r *GormOrderRepository) UpdateState(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
		"state":        order.State,
		"cancelled_at": order.CancelledAt,
	}).Error
}

// List retrieves active orders with search, filtering and pagination. Search
// matches customer name or email, or the order id when numeric.
func (r *GormOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Scopes(database.Active("orders"))

	if term := strings.TrimSpace(filter.Search); term != "" {
		cond, args := searchCondition(term, "customers.name", "customers.email")
		if id, err := strconv.ParseUint(term, 10, 64); err == nil {
			cond = "(" + cond + " OR orders.id = ?)"
			args = append(args, id)
		}
		query = query.Where(cond, args...)
	}
	if filter.CustomerID != nil {
		query = query.Where("orders.customer_id = ?", *filter.CustomerID)
	}
	if filter.State != nil {
		query = query.Where("orders.state = ?", *filter.State)
	}

	return listPage[models.Order](ctx, query, "orders", filter.ListParams, "Customer", "Items")
}
