package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormSystemRepository is a GORM implementation of SystemRepository
type GormSystemRepository struct {
	db *gorm.DB
}

// NewSystemRepository creates a new SystemRepository
func NewSystemRepository(db *gorm.DB) SystemRepository {
	return &GormSystemRepository{db: db}
}

// WipeAll deletes every row, children before parents
func (r *GormSystemRepository) WipeAll(ctx context.Context) error {
	tables := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Product{},
		&models.Customer{},
		&models.User{},
		&models.Role{},
	}

	db := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range tables {
		if err := db.Delete(model).Error; err != nil {
			return fmt.Errorf("failed to wipe %T: %w", model, err)
		}
	}
	return nil
}
