package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apierrors.FieldValidation(name, "must be a positive integer")
	}
	return id, nil
}

// currentPrincipal returns the principal set by RequireAuth.
func currentPrincipal(c *gin.Context) (policy.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Handle(c, apierrors.Authentication("Not authenticated"))
		return policy.Principal{}, false
	}
	return principal, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierrors.Handle(c, apierrors.Validation("Invalid request body", nil))
		return false
	}
	return true
}

// listQuery reads page, limit, search, sortBy and sortOrder.
func listQuery(c *gin.Context) (services.ListQuery, error) {
	pagination, err := utils.GetPaginationParams(c)
	if err != nil {
		return services.ListQuery{}, apierrors.Validation(err.Error(), nil)
	}
	return services.ListQuery{
		Pagination: pagination,
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}, nil
}

func optionalUintQuery(c *gin.Context, key string) (*uint64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apierrors.FieldValidation(key, "must be a positive integer")
	}
	return &value, nil
}

func optionalDecimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apierrors.FieldValidation(key, "must be a number")
	}
	return &value, nil
}

func location(c *gin.Context, id uint64) string {
	return fmt.Sprintf("%s/%d", c.FullPath(), id)
}
