package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
)

func TestOrderTotalSurvivesProductPriceChange(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	product := env.product(t, "Widget", "5.00")

	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(order.Total))
	assert.Equal(t, models.OrderStateDraft, order.State)

	newPrice := decimal.NewFromInt(10)
	_, err = env.products.Update(ctx, manager, product.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	stored, err := env.orders.Get(ctx, viewer, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(stored.Total))
	require.Len(t, stored.Items, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(stored.Items[0].Price))
	assert.True(t, decimal.NewFromInt(10).Equal(stored.Items[0].Product.Price))
}

func TestOrderTotalIsSumOfLines(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	a := env.product(t, "A", "1.25")
	b := env.product(t, "B", "0.10")

	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		State:      models.OrderStatePending,
		Items: []OrderItemInput{
			{ProductID: a.ID, Quantity: 4},
			{ProductID: b.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "5.3", order.Total.String())
	assert.Len(t, order.Items, 2)
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	product := env.product(t, "Widget", "5.00")
	archived := env.product(t, "Old", "1.00")
	require.NoError(t, env.products.Archive(ctx, admin, archived.ID))

	tests := []struct {
		name  string
		input CreateOrderInput
		field string
	}{
		{"no items", CreateOrderInput{CustomerID: customer.ID}, "orderItems"},
		{"zero quantity", CreateOrderInput{CustomerID: customer.ID, Items: []OrderItemInput{{ProductID: product.ID}}}, "orderItems[0].quantity"},
		{"unknown customer", CreateOrderInput{CustomerID: 99, Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}}}, "customerId"},
		{"archived product", CreateOrderInput{CustomerID: customer.ID, Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}, {ProductID: archived.ID, Quantity: 1}}}, "orderItems[1].productId"},
		{"bad state", CreateOrderInput{CustomerID: customer.ID, State: "SHIPPED", Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}}}, "state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Create(ctx, manager, tt.input)
			typed := requireKind(t, err, apierrors.KindValidation)
			assert.Contains(t, typed.Details, tt.field)
		})
	}

	result, err := env.orders.List(ctx, viewer, ListOrdersInput{})
	require.NoError(t, err)
	assert.Zero(t, result.Pagination.Total)
}

func TestReplaceItemsIsAllOrNothing(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	a := env.product(t, "A", "2.00")
	b := env.product(t, "B", "3.00")

	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: a.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{
		Items: []OrderItemInput{{ProductID: b.ID, Quantity: 1}, {ProductID: a.ID, Quantity: 0}},
	})
	requireKind(t, err, apierrors.KindValidation)

	_, err = env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{
		Items: []OrderItemInput{{ProductID: b.ID, Quantity: 1}, {ProductID: 404, Quantity: 1}},
	})
	requireKind(t, err, apierrors.KindValidation)

	_, err = env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{Items: []OrderItemInput{}})
	requireKind(t, err, apierrors.KindValidation)

	stored, err := env.orders.Get(ctx, viewer, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, a.ID, stored.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(4).Equal(stored.Total))

	updated, err := env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{
		Items: []OrderItemInput{{ProductID: b.ID, Quantity: 3}, {ProductID: a.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.True(t, decimal.NewFromInt(11).Equal(updated.Total))
}

func TestOrderStateChangesStampCancellation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	product := env.product(t, "Widget", "5.00")
	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	cancelled := models.OrderStateCancelled
	updated, err := env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{State: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateCancelled, updated.State)
	assert.NotNil(t, updated.CancelledAt)
	assert.Len(t, updated.Items, 1)

	pending := models.OrderStatePending
	updated, err = env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{State: &pending})
	require.NoError(t, err)
	assert.Nil(t, updated.CancelledAt)

	_, err = env.orders.Update(ctx, manager, order.ID, UpdateOrderInput{})
	requireKind(t, err, apierrors.KindValidation)

	_, err = env.orders.Update(ctx, viewer, order.ID, UpdateOrderInput{State: &pending})
	requireKind(t, err, apierrors.KindAuthorization)
}

func TestArchivedOrderDisappearsFromLists(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	customer := env.customer(t, "buyer@example.com")
	product := env.product(t, "Widget", "5.00")
	order, err := env.orders.Create(ctx, manager, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, env.orders.Archive(ctx, manager, order.ID))

	result, err := env.orders.ListByCustomer(ctx, viewer, customer.ID, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, result.Items)

	restored, err := env.orders.Restore(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Len(t, restored.Items, 1)
}

func TestListRejectsUnknownSort(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.products.List(ctx, viewer, ListProductsInput{ListQuery: ListQuery{SortBy: "passwordHash"}})
	typed := requireKind(t, err, apierrors.KindValidation)
	assert.Contains(t, typed.Details, "sortBy")

	_, err = env.products.List(ctx, viewer, ListProductsInput{ListQuery: ListQuery{SortOrder: "sideways"}})
	requireKind(t, err, apierrors.KindValidation)

	env.product(t, "Cheap", "1.00")
	env.product(t, "Dear", "100.00")
	result, err := env.products.List(ctx, viewer, ListProductsInput{ListQuery: ListQuery{SortBy: "price", SortOrder: "asc"}})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Cheap", result.Items[0].Name)
	assert.Equal(t, int64(2), result.Pagination.Total)
}
