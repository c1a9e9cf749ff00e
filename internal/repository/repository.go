package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// Archivable is the soft-delete capability shared by every lifecycle-managed
// entity store. FindActive treats archived rows as absent; FindAny does not.
type Archivable[T any] interface {
	// FindActive finds a non-archived row by ID
	FindActive(ctx context.Context, id uint64) (*T, error)

	// FindAny finds a row by ID regardless of archive state
	FindAny(ctx context.Context, id uint64) (*T, error)

	// ExistsActive reports whether another non-archived row holds value in column
	ExistsActive(ctx context.Context, column string, value any, excludeID uint64) (bool, error)

	// Archive flags an active row as archived, also setting the extra columns
	Archive(ctx context.Context, id uint64, extra map[string]any) error

	// Restore clears the archive flag of an archived row, also setting the extra columns
	Restore(ctx context.Context, id uint64, extra map[string]any) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id uint64) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)

	// EnsureRoles inserts any of the named roles that do not exist yet
	EnsureRoles(ctx context.Context, names []string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Archivable[models.User]
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// FindActiveByUsername finds the non-archived user holding username
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)

	// CountActive counts non-archived users
	CountActive(ctx context.Context) (int64, error)

	// TouchLastLogin stamps the last successful login
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	ListParams
	RoleID *uint64
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Archivable[models.Customer]
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, filter CustomerFilter) ([]models.Customer, int64, error)
}

// CustomerFilter holds filtering options for listing customers
type CustomerFilter struct {
	ListParams
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Archivable[models.Product]
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
}

// ProductFilter holds filtering options for listing products
type ProductFilter struct {
	ListParams
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Archivable[models.Order]

	// CreateWithItems inserts the order row and all of its items atomically
	CreateWithItems(ctx context.Context, order *models.Order) error

	// ReplaceItems deletes every item of the order, inserts items and stores
	// the recomputed total, atomically
	ReplaceItems(ctx context.Context, order *models.Order, items []models.OrderItem) error

	// UpdateState writes the order's state columns only
	UpdateState(ctx context.Context, order *models.Order) error

	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
}

// OrderFilter holds filtering options for listing orders
type OrderFilter struct {
	ListParams
	CustomerID *uint64
	State      *models.OrderState
}

// DashboardCounts aggregates active-row statistics
type DashboardCounts struct {
	Customers    int64
	Users        int64
	Products     int64
	Orders       int64
	TotalRevenue decimal.Decimal
	RecentOrders int64
}

// StatsRepository defines read-only aggregate queries
type StatsRepository interface {
	Dashboard(ctx context.Context, recentSince time.Time) (DashboardCounts, error)
}

// SystemRepository defines maintenance operations over all tables
type SystemRepository interface {
	// WipeAll deletes every row of every table
	WipeAll(ctx context.Context) error
}

// Repositories bundles the stores bound to one database handle.
type Repositories struct {
	db        *gorm.DB
	Roles     RoleRepository
	Users     UserRepository
	Customers CustomerRepository
	Products  ProductRepository
	Orders    OrderRepository
	Stats     StatsRepository
	System    SystemRepository
}

// New creates the repositories backed by db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		Roles:     NewRoleRepository(db),
		Users:     NewUserRepository(db),
		Customers: NewCustomerRepository(db),
		Products:  NewProductRepository(db),
		Orders:    NewOrderRepository(db),
		Stats:     NewStatsRepository(db),
		System:    NewSystemRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
