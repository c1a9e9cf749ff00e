package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
)

// ListQuery is the caller-facing list request shared by every entity.
type ListQuery struct {
	Pagination utils.PaginationParams
	Search     string
	SortBy     string
	SortOrder  string
}

// ListResult is one page of entities.
type ListResult[T any] struct {
	Items      []T
	Pagination utils.PaginationResponse
}

// resolve validates the sort key against the entity's whitelist. The default
// is newest-created first.
func (q ListQuery) resolve(sortColumns map[string]string) (repository.ListParams, error) {
	pagination := q.Pagination
	if pagination.Limit == 0 {
		pagination = utils.PaginationParams{Page: 1, Limit: constants.DefaultPageSize}
	}

	key := strings.TrimSpace(q.SortBy)
	if key == "" {
		key = repository.DefaultSortKey
	}
	column, ok := sortColumns[key]
	if !ok {
		return repository.ListParams{}, apierrors.FieldValidation("sortBy", fmt.Sprintf("must be one of %s", strings.Join(sortKeys(sortColumns), ", ")))
	}

	desc := true
	switch strings.ToLower(strings.TrimSpace(q.SortOrder)) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return repository.ListParams{}, apierrors.FieldValidation("sortOrder", "must be asc or desc")
	}

	return repository.ListParams{
		Pagination: pagination,
		Search:     strings.TrimSpace(q.Search),
		SortColumn: column,
		SortDesc:   desc,
	}, nil
}

func newListResult[T any](items []T, params repository.ListParams, total int64) *ListResult[T] {
	return &ListResult[T]{
		Items:      items,
		Pagination: utils.NewPaginationResponse(params.Pagination, total),
	}
}

func sortKeys(columns map[string]string) []string {
	keys := make([]string, 0, len(columns))
	for key := range columns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
