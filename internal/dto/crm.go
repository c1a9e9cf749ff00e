package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
)

// ListResponse represents one page of any entity
type ListResponse[T any] struct {
	Data       []T                      `json:"data"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CustomerDTO represents a customer in API responses
type CustomerDTO struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Address    string     `json:"address"`
	City       string     `json:"city"`
	Country    *string    `json:"country"`
	Phone      *string    `json:"phone"`
	CreatedBy  *uint64    `json:"createdBy"`
	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ProductDTO represents a product in API responses
type ProductDTO struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedBy   *uint64         `json:"createdBy"`
	UpdatedBy   *uint64         `json:"updatedBy"`
	Archived    bool            `json:"archived"`
	ArchivedAt  *time.Time      `json:"archivedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderItemDTO is one line of an order. Price is the snapshot taken when the
// line was stored.
type OrderItemDTO struct {
	ID          uint64          `json:"id"`
	ProductID   uint64          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderCustomerDTO is the customer summary embedded in an order
type OrderCustomerDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Archived bool   `json:"archived"`
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	ID          uint64            `json:"id"`
	CustomerID  uint64            `json:"customerId"`
	Customer    *OrderCustomerDTO `json:"customer,omitempty"`
	Total       decimal.Decimal   `json:"total"`
	State       models.OrderState `json:"state"`
	CancelledAt *time.Time        `json:"cancelledAt"`
	CreatedBy   *uint64           `json:"createdBy"`
	Items       []OrderItemDTO    `json:"orderItems"`
	Archived    bool              `json:"archived"`
	ArchivedAt  *time.Time        `json:"archivedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// DashboardDTO represents dashboard statistics
type DashboardDTO struct {
	TotalCustomers int64           `json:"totalCustomers"`
	TotalUsers     int64           `json:"totalUsers"`
	TotalProducts  int64           `json:"totalProducts"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	RecentOrders   int64           `json:"recentOrders"`
}

// Conversion functions

func ToCustomerDTO(customer models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:         customer.ID,
		Name:       customer.Name,
		Email:      customer.Email,
		Address:    customer.Address,
		City:       customer.City,
		Country:    customer.Country,
		Phone:      customer.Phone,
		CreatedBy:  customer.CreatedBy,
		Archived:   customer.Archived,
		ArchivedAt: customer.ArchivedAt,
		CreatedAt:  customer.CreatedAt,
		UpdatedAt:  customer.UpdatedAt,
	}
}

func ToProductDTO(product models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		CreatedBy:   product.CreatedBy,
		UpdatedBy:   product.UpdatedBy,
		Archived:    product.Archived,
		ArchivedAt:  product.ArchivedAt,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func ToOrderDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		Total:       order.Total,
		State:       order.State,
		CancelledAt: order.CancelledAt,
		CreatedBy:   order.CreatedBy,
		Items:       make([]OrderItemDTO, len(order.Items)),
		Archived:    order.Archived,
		ArchivedAt:  order.ArchivedAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.Customer.ID != 0 {
		dto.Customer = &OrderCustomerDTO{
			ID:       order.Customer.ID,
			Name:     order.Customer.Name,
			Email:    order.Customer.Email,
			Archived: order.Customer.Archived,
		}
	}
	for i, item := range order.Items {
		dto.Items[i] = OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   item.LineTotal(),
		}
	}
	return dto
}

func ToDashboardDTO(counts repository.DashboardCounts) DashboardDTO {
	return DashboardDTO{
		TotalCustomers: counts.Customers,
		TotalUsers:     counts.Users,
		TotalProducts:  counts.Products,
		TotalOrders:    counts.Orders,
		TotalRevenue:   counts.TotalRevenue,
		RecentOrders:   counts.RecentOrders,
	}
}

// ToListResponse converts a page of models with convert.
func ToListResponse[M any, T any](items []M, pagination utils.PaginationResponse, convert func(M) T) ListResponse[T] {
	data := make([]T, len(items))
	for i, item := range items {
		data[i] = convert(item)
	}
	return ListResponse[T]{Data: data, Pagination: pagination}
}
