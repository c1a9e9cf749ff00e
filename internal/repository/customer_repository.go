package repository

import (
	"context"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormCustomerRepository is a GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	*ArchivableStore[models.Customer]
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{
		ArchivableStore: newArchivableStore[models.Customer](db, "customers"),
		db:              db,
	}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// Update saves every column of the customer
func (r *GormCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// List retrieves active customers with search and pagination
func (r *GormCustomerRepository) List(ctx context.Context, filter CustomerFilter) ([]models.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{}).Scopes(database.Active("customers"))
	query = applySearch(query, filter.Search, "customers.name", "customers.email", "customers.city", "customers.address")
	return listPage[models.Customer](ctx, query, "customers", filter.ListParams)
}
