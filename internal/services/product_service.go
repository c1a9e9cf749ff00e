package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
)

// ProductService handles product business logic
type ProductService struct {
	repos     *repository.Repositories
	lifecycle *Lifecycle[models.Product]
}

// NewProductService creates a new ProductService
func NewProductService(repos *repository.Repositories) *ProductService {
	lifecycle := newLifecycle[models.Product]("product", repos.Products, productUniques)
	stampUpdater := func(p policy.Principal) map[string]any { return map[string]any{"updated_by": p.UserID} }
	lifecycle.onArchive = stampUpdater
	lifecycle.onRestore = stampUpdater
	return &ProductService{repos: repos, lifecycle: lifecycle}
}

func productUniques(product *models.Product) []policy.UniqueField {
	return []policy.UniqueField{{Field: "name", Column: "name", Value: product.Name}}
}

// CreateProductInput represents input for creating a product
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
}

// UpdateProductInput represents a partial product update
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
}

// ListProductsInput represents filters for listing products
type ListProductsInput struct {
	ListQuery
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (s *ProductService) List(ctx context.Context, principal policy.Principal, input ListProductsInput) (*ListResult[models.Product], error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	params, err := input.resolve(repository.ProductSortColumns)
	if err != nil {
		return nil, err
	}

	products, total, err := s.repos.Products.List(ctx, repository.ProductFilter{
		ListParams: params,
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return newListResult(products, params, total), nil
}

func (s *ProductService) Get(ctx context.Context, principal policy.Principal, id uint64) (*models.Product, error) {
	return s.lifecycle.Get(ctx, principal, id)
}

// Create creates a product. Names are unique among active products.
func (s *ProductService) Create(ctx context.Context, principal policy.Principal, input CreateProductInput) (*models.Product, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Price = input.Price.Round(2)
	problems := validateInput(input)
	problems.requirePositive("price", &input.Price)
	if err := problems.err(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		CreatedBy:   &principal.UserID,
		UpdatedBy:   &principal.UserID,
	}
	if err := s.lifecycle.checkUnique(ctx, productUniques(product)[0], 0); err != nil {
		return nil, err
	}

	if err := s.repos.Products.Create(ctx, product); err != nil {
		return nil, s.lifecycle.translateWrite(err, "create")
	}
	return product, nil
}

// Update applies a partial update. A price change never touches existing
// order items.
func (s *ProductService) Update(ctx context.Context, principal policy.Principal, id uint64, input UpdateProductInput) (*models.Product, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Name = trimPtr(input.Name)
	if input.Price != nil {
		rounded := input.Price.Round(2)
		input.Price = &rounded
	}
	problems := validateInput(input)
	problems.requirePresent("name", input.Name)
	problems.requirePositive("price", input.Price)
	if err := problems.err(); err != nil {
		return nil, err
	}

	product, err := s.lifecycle.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
		if err := s.lifecycle.checkUnique(ctx, productUniques(product)[0], id); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	product.UpdatedBy = &principal.UserID

	if err := s.repos.Products.Update(ctx, product); err != nil {
		return nil, s.lifecycle.translateWrite(err, "update")
	}
	return product, nil
}

// Archive archives the product. Order items referencing it keep their snapshot.
func (s *ProductService) Archive(ctx context.Context, principal policy.Principal, id uint64) error {
	return s.lifecycle.Archive(ctx, principal, id)
}

func (s *ProductService) Restore(ctx context.Context, principal policy.Principal, id uint64) (*models.Product, error) {
	return s.lifecycle.Restore(ctx, principal, id)
}
