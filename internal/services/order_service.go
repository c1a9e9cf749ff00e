package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

// OrderService handles orders and their owned items.
type OrderService struct {
	repos     *repository.Repositories
	lifecycle *Lifecycle[models.Order]
	now       func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(repos *repository.Repositories) *OrderService {
	return &OrderService{
		repos:     repos,
		lifecycle: newLifecycle[models.Order]("order", repos.Orders, nil),
		now:       time.Now,
	}
}

// OrderItemInput is one requested line of an order.
type OrderItemInput struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput represents input for creating an order
type CreateOrderInput struct {
	CustomerID uint64            `json:"customerId"`
	State      models.OrderState `json:"state"`
	Items      []OrderItemInput  `json:"orderItems"`
}

// UpdateOrderInput represents an order update. A nil Items leaves the items
// untouched; a non-nil Items replaces the whole set.
type UpdateOrderInput struct {
	State *models.OrderState `json:"state"`
	Items []OrderItemInput   `json:"orderItems"`
}

// ListOrdersInput represents filters for listing orders
type ListOrdersInput struct {
	ListQuery
	CustomerID *uint64
	State      *models.OrderState
}

func (s *OrderService) List(ctx context.Context, principal policy.Principal, input ListOrdersInput) (*ListResult[models.Order], error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	if input.State != nil && !input.State.IsValid() {
		return nil, apierrors.FieldValidation("state", "must be one of DRAFT, PENDING, COMPLETED, CANCELLED")
	}
	params, err := input.resolve(repository.OrderSortColumns)
	if err != nil {
		return nil, err
	}

	orders, total, err := s.repos.Orders.List(ctx, repository.OrderFilter{
		ListParams: params,
		CustomerID: input.CustomerID,
		State:      input.State,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return newListResult(orders, params, total), nil
}

// ListByCustomer lists the active orders of an active customer.
func (s *OrderService) ListByCustomer(ctx context.Context, principal policy.Principal, customerID uint64, query ListQuery) (*ListResult[models.Order], error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	if _, err := s.repos.Customers.FindActive(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("customer", customerID)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return s.List(ctx, principal, ListOrdersInput{ListQuery: query, CustomerID: &customerID})
}

func (s *OrderService) Get(ctx context.Context, principal policy.Principal, id uint64) (*models.Order, error) {
	return s.lifecycle.Get(ctx, principal, id)
}

// Create stores an order with all of its items, or nothing.
func (s *OrderService) Create(ctx context.Context, principal policy.Principal, input CreateOrderInput) (*models.Order, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	if input.State == "" {
		input.State = models.OrderStateDraft
	}
	problems := fieldErrors{}
	if input.CustomerID == 0 {
		problems.add("customerId", "is required")
	}
	checkState(problems, &input.State)
	checkItems(problems, input.Items)
	if err := problems.err(); err != nil {
		return nil, err
	}

	var orderID uint64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Customers.FindActive(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.FieldValidation("customerId", fmt.Sprintf("customer %d does not exist", input.CustomerID))
			}
			return fmt.Errorf("failed to find customer: %w", err)
		}
		items, err := resolveItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID: input.CustomerID,
			State:      input.State,
			Total:      models.ComputeTotal(items),
			CreatedBy:  &principal.UserID,
			Items:      items,
		}
		s.stampCancellation(order, "")
		if err := tx.Orders.CreateWithItems(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Uint64("order_id", orderID).Msg("order.created")
	return s.lifecycle.findActive(ctx, orderID)
}

// Update changes an order's state and optionally replaces its items. Any
// invalid item leaves the order and all of its items unchanged.
func (s *OrderService) Update(ctx context.Context, principal policy.Principal, id uint64, input UpdateOrderInput) (*models.Order, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	problems := fieldErrors{}
	if input.State == nil && input.Items == nil {
		problems.add("_", "state or orderItems is required")
	}
	checkState(problems, input.State)
	if input.Items != nil {
		checkItems(problems, input.Items)
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.FindActive(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFound("order", id)
			}
			return fmt.Errorf("failed to find order: %w", err)
		}

		if input.State != nil {
			previous := order.State
			order.State = *input.State
			s.stampCancellation(order, previous)
		}

		if input.Items == nil {
			return tx.Orders.UpdateState(ctx, order)
		}
		items, err := resolveItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}
		return tx.Orders.ReplaceItems(ctx, order, items)
	})
	if err != nil {
		return nil, err
	}
	return s.lifecycle.findActive(ctx, id)
}

func (s *OrderService) Archive(ctx context.Context, principal policy.Principal, id uint64) error {
	return s.lifecycle.Archive(ctx, principal, id)
}

func (s *OrderService) Restore(ctx context.Context, principal policy.Principal, id uint64) (*models.Order, error) {
	return s.lifecycle.Restore(ctx, principal, id)
}

// stampCancellation records when an order entered CANCELLED and clears the
// stamp when it leaves.
func (s *OrderService) stampCancellation(order *models.Order, previous models.OrderState) {
	switch {
	case order.State == models.OrderStateCancelled && previous != models.OrderStateCancelled:
		now := s.now()
		order.CancelledAt = &now
	case order.State != models.OrderStateCancelled:
		order.CancelledAt = nil
	}
}

func checkState(problems fieldErrors, state *models.OrderState) {
	if state != nil && !state.IsValid() {
		problems.add("state", "must be one of DRAFT, PENDING, COMPLETED, CANCELLED")
	}
}

func checkItems(problems fieldErrors, items []OrderItemInput) {
	if len(items) == 0 {
		problems.add("orderItems", "must contain at least one item")
		return
	}
	for i, item := range items {
		if item.ProductID == 0 {
			problems.add(fmt.Sprintf("orderItems[%d].productId", i), "is required")
		}
		if item.Quantity <= 0 {
			problems.add(fmt.Sprintf("orderItems[%d].quantity", i), "must be greater than 0")
		}
	}
}

// resolveItems loads every referenced active product and snapshots its
// current price. All unresolvable lines are reported together.
func resolveItems(ctx context.Context, tx *repository.Repositories, inputs []OrderItemInput) ([]models.OrderItem, error) {
	problems := fieldErrors{}
	items := make([]models.OrderItem, 0, len(inputs))
	for i, input := range inputs {
		product, err := tx.Products.FindActive(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				problems.add(fmt.Sprintf("orderItems[%d].productId", i), fmt.Sprintf("product %d does not exist", input.ProductID))
				continue
			}
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Price:     product.Price,
		})
	}
	if err := problems.err(); err != nil {
		return nil, err
	}
	return items, nil
}
