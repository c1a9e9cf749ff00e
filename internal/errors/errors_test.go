package errors

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func handleAndDecode(t *testing.T, err error, logBuf *bytes.Buffer) (*httptest.ResponseRecorder, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	if logBuf != nil {
		logger := zerolog.New(logBuf)
		req = req.WithContext(logger.WithContext(req.Context()))
	}
	c.Request = req

	Handle(c, err)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleMapsKindsToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validation("bad input", nil), http.StatusBadRequest, ErrCodeInvalidInput},
		{"authentication", Authentication(""), http.StatusUnauthorized, ErrCodeUnauthorized},
		{"credentials", InvalidCredentials(), http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"authorization", Authorization("requires Admin"), http.StatusForbidden, ErrCodeInsufficientPermissions},
		{"not found", NotFound("product", 4), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", Conflict("taken"), http.StatusConflict, ErrCodeConflict},
		{"invalid state", InvalidState("not archived"), http.StatusBadRequest, ErrCodeInvalidState},
		{"rate limited", RateLimited(), http.StatusTooManyRequests, ErrCodeRateLimited},
		{"wrapped typed", fmt.Errorf("service: %w", Conflict("taken")), http.StatusConflict, ErrCodeConflict},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"gorm duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict, ErrCodeConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := handleAndDecode(t, tc.err, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestHandleKeepsValidationDetails(t *testing.T) {
	_, body := handleAndDecode(t, FieldValidation("price", "must be greater than 0"), nil)

	details, ok := body.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be greater than 0", details["price"])
}

func TestHandleHidesTechnicalDetail(t *testing.T) {
	logBuf := &bytes.Buffer{}
	w, body := handleAndDecode(t, stdErrors.New("dial tcp 10.0.0.1:5432: connection refused"), logBuf)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Technical error", body.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
	assert.Contains(t, logBuf.String(), "connection refused")
	assert.Contains(t, logBuf.String(), "request.technical_error")
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Order 12 not found", NotFound("order", 12).Error())
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InvalidState("x"))
	assert.True(t, IsKind(err, KindInvalidState))
	assert.False(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(stdErrors.New("plain"), KindConflict))
}
