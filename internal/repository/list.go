package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
)

// ListParams are the paging, search and sort options common to every list query.
type ListParams struct {
	Pagination utils.PaginationParams
	Search     string
	SortColumn string
	SortDesc   bool
}

// Sortable columns per entity, keyed by the API sort key.
var (
	UserSortColumns = map[string]string{
		"username":      "users.username",
		"email":         "users.email",
		"firstName":     "users.first_name",
		"lastName":      "users.last_name",
		"lastLoginDate": "users.last_login_date",
		"createdAt":     "users.created_at",
		"updatedAt":     "users.updated_at",
	}
	CustomerSortColumns = map[string]string{
		"name":      "customers.name",
		"email":     "customers.email",
		"city":      "customers.city",
		"createdAt": "customers.created_at",
		"updatedAt": "customers.updated_at",
	}
	ProductSortColumns = map[string]string{
		"name":      "products.name",
		"price":     "products.price",
		"createdAt": "products.created_at",
		"updatedAt": "products.updated_at",
	}
	OrderSortColumns = map[string]string{
		"id":        "orders.id",
		"total":     "orders.total",
		"state":     "orders.state",
		"createdAt": "orders.created_at",
	}
)

// DefaultSortKey is used when the caller gives no sort key.
const DefaultSortKey = "createdAt"

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in any
// supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchCondition builds a case-insensitive OR-combined substring match. The
// term is matched literally.
func searchCondition(term string, columns ...string) (string, []interface{}) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		conds[i] = "LOWER(" + column + ") LIKE ? ESCAPE '!'"
		args[i] = pattern
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

func applySearch(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return query
	}
	cond, args := searchCondition(term, columns...)
	return query.Where(cond, args...)
}

// listPage counts query, then loads one ordered page of it into dest.
func listPage[T any](ctx context.Context, query *gorm.DB, table string, params ListParams, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := query.WithContext(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := params.SortColumn
	if sortColumn == "" {
		sortColumn = table + ".created_at"
	}
	direction := " ASC"
	if params.SortDesc {
		direction = " DESC"
	}

	listQuery := query.WithContext(ctx).
		Order(sortColumn + direction).
		Order(table + ".id DESC")
	if params.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(params.Pagination))
	}
	for _, p := range preloads {
		listQuery = listQuery.Preload(p)
	}

	records := []T{}
	if err := listQuery.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
