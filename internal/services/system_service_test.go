package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/config"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

func TestBootstrapCreatesFirstAdminOnce(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	cfg := config.BootstrapConfig{AdminUsername: "admin", AdminEmail: "admin@example.com"}

	password, err := env.system.Bootstrap(ctx, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	result, err := env.auth.Login(ctx, LoginInput{Username: "admin", Password: password})
	require.NoError(t, err)
	assert.Equal(t, "Admin", result.User.Role.Name)
	assert.True(t, result.User.PasswordChange)

	again, err := env.system.Bootstrap(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestResetDataSeedsDemoSet(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	env.product(t, "Leftover", "1.00")

	_, err := env.system.ResetData(ctx, manager)
	requireKind(t, err, apierrors.KindAuthorization)

	summary, err := env.system.ResetData(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, SeedSummary{Roles: 4, Users: 6, Customers: 5, Products: 20, Orders: 10}, summary)

	counts, err := env.stats.Dashboard(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Users)
	assert.Equal(t, int64(5), counts.Customers)
	assert.Equal(t, int64(20), counts.Products)
	assert.Equal(t, int64(10), counts.Orders)
	assert.Equal(t, int64(10), counts.RecentOrders)
	assert.True(t, counts.TotalRevenue.IsPositive())

	_, err = env.auth.Login(ctx, LoginInput{Username: "archived.user", Password: "Welcome1"})
	requireKind(t, err, apierrors.KindAuthentication)

	result, err := env.auth.Login(ctx, LoginInput{Username: "bob.viewer", Password: "Welcome1"})
	require.NoError(t, err)
	assert.Equal(t, "Viewer", result.User.Role.Name)
}

func TestDashboardIgnoresArchivedRows(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	product := env.product(t, "Widget", "5.00")
	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, env.orders.Archive(ctx, admin, order.ID))

	counts, err := env.stats.Dashboard(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Orders)
	assert.Equal(t, "5", counts.TotalRevenue.String())
}
