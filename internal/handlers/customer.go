package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	orderService    *services.OrderService
}

func NewCustomerHandler(customerService *services.CustomerService, orderService *services.OrderService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, orderService: orderService}
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	query, err := listQuery(c)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	result, err := h.customerService.List(c.Request.Context(), principal, query)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(result.Items, result.Pagination, dto.ToCustomerDTO))
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	customer, err := h.customerService.Get(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateCustomerInput
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), principal, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Header("Location", location(c, customer.ID))
	c.JSON(http.StatusCreated, dto.ToCustomerDTO(*customer))
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	var req services.UpdateCustomerInput
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

func (h *CustomerHandler) ArchiveCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	if err := h.customerService.Archive(c.Request.Context(), principal, id); err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CustomerHandler) RestoreCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	customer, err := h.customerService.Restore(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

// ListCustomerOrders returns the active orders of an active customer
func (h *CustomerHandler) ListCustomerOrders(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	query, err := listQuery(c)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	result, err := h.orderService.ListByCustomer(c.Request.Context(), principal, id, query)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(result.Items, result.Pagination, dto.ToOrderDTO))
}
