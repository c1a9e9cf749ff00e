package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts returns active products, optionally within minPrice/maxPrice
func (h *ProductHandler) ListProducts(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	query, err := listQuery(c)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	input := services.ListProductsInput{ListQuery: query}
	if input.MinPrice, err = optionalDecimalQuery(c, "minPrice"); err != nil {
		apierrors.Handle(c, err)
		return
	}
	if input.MaxPrice, err = optionalDecimalQuery(c, "maxPrice"); err != nil {
		apierrors.Handle(c, err)
		return
	}

	result, err := h.productService.List(c.Request.Context(), principal, input)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(result.Items, result.Pagination, dto.ToProductDTO))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	product, err := h.productService.Get(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductDTO(*product))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), principal, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Header("Location", location(c, product.ID))
	c.JSON(http.StatusCreated, dto.ToProductDTO(*product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	var req services.UpdateProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductDTO(*product))
}

func (h *ProductHandler) ArchiveProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	if err := h.productService.Archive(c.Request.Context(), principal, id); err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) RestoreProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	product, err := h.productService.Restore(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductDTO(*product))
}
