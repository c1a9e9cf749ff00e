package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// Dashboard counts active rows per entity, sums active order totals and counts
// active orders created since recentSince
func (r *GormStatsRepository) Dashboard(ctx context.Context, recentSince time.Time) (DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	countTargets := []struct {
		model interface{}
		table string
		dest  *int64
	}{
		{&models.Customer{}, "customers", &counts.Customers},
		{&models.User{}, "users", &counts.Users},
		{&models.Product{}, "products", &counts.Products},
		{&models.Order{}, "orders", &counts.Orders},
	}
	for _, target := range countTargets {
		if err := db.Model(target.model).Scopes(database.Active(target.table)).Count(target.dest).Error; err != nil {
			return DashboardCounts{}, err
		}
	}

	revenue := decimal.Zero
	if err := db.Model(&models.Order{}).
		Scopes(database.Active("orders")).
		Select("COALESCE(SUM(orders.total), 0)").
		Row().
		Scan(&revenue); err != nil {
		return DashboardCounts{}, err
	}
	counts.TotalRevenue = revenue

	if err := db.Model(&models.Order{}).
		Scopes(database.Active("orders")).
		Where("orders.created_at >= ?", recentSince).
		Count(&counts.RecentOrders).Error; err != nil {
		return DashboardCounts{}, err
	}

	return counts, nil
}
