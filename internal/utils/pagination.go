package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginationParams validates page and limit and derives the offset.
func NewPaginationParams(page, limit int) (PaginationParams, error) {
	if page < 1 {
		return PaginationParams{}, fmt.Errorf("page must be at least 1")
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		return PaginationParams{}, fmt.Errorf("limit must be between %d and %d", constants.MinPageSize, constants.MaxPageSize)
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}, nil
}

// GetPaginationParams extracts and validates pagination parameters from the request.
// Missing values fall back to defaults; malformed or out-of-range values are errors.
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return PaginationParams{}, err
	}
	limit, err := queryInt(c, "limit", constants.DefaultPageSize)
	if err != nil {
		return PaginationParams{}, err
	}
	return NewPaginationParams(page, limit)
}

// NewPaginationResponse builds the response metadata for a page of total rows.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}
	return PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", key)
	}
	return value, nil
}
