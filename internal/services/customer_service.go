package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
)

// CustomerService handles customer business logic
type CustomerService struct {
	repos     *repository.Repositories
	lifecycle *Lifecycle[models.Customer]
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repos *repository.Repositories) *CustomerService {
	return &CustomerService{
		repos:     repos,
		lifecycle: newLifecycle[models.Customer]("customer", repos.Customers, customerUniques),
	}
}

func customerUniques(customer *models.Customer) []policy.UniqueField {
	return []policy.UniqueField{{Field: "email", Column: "email", Value: customer.Email}}
}

// CreateCustomerInput represents input for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email_address,max=255"`
	Address string  `json:"address" validate:"required,max=255"`
	City    string  `json:"city" validate:"required,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

// UpdateCustomerInput represents a partial customer update
type UpdateCustomerInput struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Email   *string `json:"email" validate:"omitempty,email_address,max=255"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

func (s *CustomerService) List(ctx context.Context, principal policy.Principal, query ListQuery) (*ListResult[models.Customer], error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	params, err := query.resolve(repository.CustomerSortColumns)
	if err != nil {
		return nil, err
	}

	customers, total, err := s.repos.Customers.List(ctx, repository.CustomerFilter{ListParams: params})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return newListResult(customers, params, total), nil
}

func (s *CustomerService) Get(ctx context.Context, principal policy.Principal, id uint64) (*models.Customer, error) {
	return s.lifecycle.Get(ctx, principal, id)
}

func (s *CustomerService) Create(ctx context.Context, principal policy.Principal, input CreateCustomerInput) (*models.Customer, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Address = strings.TrimSpace(input.Address)
	input.City = strings.TrimSpace(input.City)
	if err := validateInput(input).err(); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:      input.Name,
		Email:     input.Email,
		Address:   input.Address,
		City:      input.City,
		Country:   optionalString(input.Country),
		Phone:     optionalString(input.Phone),
		CreatedBy: &principal.UserID,
	}
	for _, field := range customerUniques(customer) {
		if err := s.lifecycle.checkUnique(ctx, field, 0); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Customers.Create(ctx, customer); err != nil {
		return nil, s.lifecycle.translateWrite(err, "create")
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, principal policy.Principal, id uint64, input UpdateCustomerInput) (*models.Customer, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Name = trimPtr(input.Name)
	input.Address = trimPtr(input.Address)
	input.City = trimPtr(input.City)
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	problems := validateInput(input)
	problems.requirePresent("name", input.Name)
	problems.requirePresent("email", input.Email)
	problems.requirePresent("address", input.Address)
	problems.requirePresent("city", input.City)
	if err := problems.err(); err != nil {
		return nil, err
	}

	customer, err := s.lifecycle.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		customer.Email = *input.Email
		if err := s.lifecycle.checkUnique(ctx, customerUniques(customer)[0], id); err != nil {
			return nil, err
		}
	}
	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.Country != nil {
		customer.Country = optionalString(input.Country)
	}
	if input.Phone != nil {
		customer.Phone = optionalString(input.Phone)
	}

	if err := s.repos.Customers.Update(ctx, customer); err != nil {
		return nil, s.lifecycle.translateWrite(err, "update")
	}
	return customer, nil
}

// Archive archives the customer. Its orders stay as they are.
func (s *CustomerService) Archive(ctx context.Context, principal policy.Principal, id uint64) error {
	return s.lifecycle.Archive(ctx, principal, id)
}

func (s *CustomerService) Restore(ctx context.Context, principal policy.Principal, id uint64) (*models.Customer, error) {
	return s.lifecycle.Restore(ctx, principal, id)
}
