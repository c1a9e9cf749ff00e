package utils

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/products?"+query, nil)
	return c
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params, err := GetPaginationParams(contextWithQuery(""))
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Page: 1, Limit: 10, Offset: 0}, params)
}

func TestGetPaginationParamsOffset(t *testing.T) {
	params, err := GetPaginationParams(contextWithQuery("page=3&limit=20"))
	require.NoError(t, err)
	assert.Equal(t, 40, params.Offset)
}

func TestGetPaginationParamsRejectsBadInput(t *testing.T) {
	for _, query := range []string{"page=abc", "page=0", "limit=0", "limit=101", "limit=-5"} {
		_, err := GetPaginationParams(contextWithQuery(query))
		assert.Error(t, err, query)
	}
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(21), resp.Total)

	assert.Equal(t, 0, NewPaginationResponse(PaginationParams{Page: 1, Limit: 10}, 0).TotalPages)
}

func TestGenerateTempPassword(t *testing.T) {
	password, err := GenerateTempPassword()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`), password)
	assert.GreaterOrEqual(t, len(password), 8)
}
