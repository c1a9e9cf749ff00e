package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/services"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders returns active orders; customerId and state narrow the result
func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	query, err := listQuery(c)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	input := services.ListOrdersInput{ListQuery: query}
	if input.CustomerID, err = optionalUintQuery(c, "customerId"); err != nil {
		apierrors.Handle(c, err)
		return
	}
	if state := c.Query("state"); state != "" {
		orderState := models.OrderState(state)
		input.State = &orderState
	}

	result, err := h.orderService.List(c.Request.Context(), principal, input)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(result.Items, result.Pagination, dto.ToOrderDTO))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderDTO(*order))
}

// CreateOrder stores an order and its items in one transaction
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateOrderInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), principal, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Header("Location", location(c, order.ID))
	c.JSON(http.StatusCreated, dto.ToOrderDTO(*order))
}

// UpdateOrder changes the state and, when orderItems is present, replaces all items
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	var req services.UpdateOrderInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderDTO(*order))
}

func (h *OrderHandler) ArchiveOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	if err := h.orderService.Archive(c.Request.Context(), principal, id); err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) RestoreOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	order, err := h.orderService.Restore(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderDTO(*order))
}
