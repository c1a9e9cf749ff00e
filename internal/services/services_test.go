package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/database"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
)

var (
	admin   = policy.Principal{UserID: 1, Username: "admin", Role: policy.RoleAdmin}
	manager = policy.Principal{UserID: 2, Username: "manager", Role: policy.RoleManager}
	viewer  = policy.Principal{UserID: 3, Username: "viewer", Role: policy.RoleViewer}
	nobody  = policy.Principal{UserID: 4, Username: "nobody", Role: policy.RoleUnknown}
)

type testEnv struct {
	repos     *repository.Repositories
	auth      *AuthService
	users     *UserService
	customers *CustomerService
	products  *ProductService
	orders    *OrderService
	stats     *StatsService
	system    *SystemService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	repos := repository.New(db)
	env := &testEnv{
		repos:     repos,
		auth:      NewAuthService(repos, nil),
		users:     NewUserService(repos),
		customers: NewCustomerService(repos),
		products:  NewProductService(repos),
		orders:    NewOrderService(repos),
		stats:     NewStatsService(repos.Stats),
		system:    NewSystemService(repos, config.SeedConfig{DefaultPassword: "Welcome1"}),
	}
	require.NoError(t, repos.Roles.EnsureRoles(context.Background(), roleNames()))
	return env
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	product, err := e.products.Create(context.Background(), manager, CreateProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) customer(t *testing.T, email string) *models.Customer {
	t.Helper()
	customer, err := e.customers.Create(context.Background(), manager, CreateCustomerInput{
		Name:    "Acme",
		Email:   email,
		Address: "1 Main St",
		City:    "Springfield",
	})
	require.NoError(t, err)
	return customer
}

func (e *testEnv) roleID(t *testing.T, role policy.Role) uint64 {
	t.Helper()
	found, err := e.repos.Roles.FindByName(context.Background(), string(role))
	require.NoError(t, err)
	return found.ID
}

func requireKind(t *testing.T, err error, kind apierrors.Kind) *apierrors.Error {
	t.Helper()
	require.Error(t, err)
	typed, ok := apierrors.As(err)
	require.True(t, ok, "expected typed error, got %v", err)
	require.Equal(t, kind, typed.Kind, typed.Message)
	return typed
}
