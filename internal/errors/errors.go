package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Business logic errors
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeRateLimited  = "RATE_LIMITED"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Kind classifies a failure independent of transport.
type Kind int

const (
	KindTechnical Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindInvalidState
	KindRateLimited
)

// Metadata is the HTTP rendering of a Kind.
type Metadata struct {
	HTTPStatus    int
	Code          string
	PublicMessage string
}

var metadataByKind = map[Kind]Metadata{
	KindValidation:     {http.StatusBadRequest, ErrCodeInvalidInput, "Validation failed"},
	KindAuthentication: {http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required"},
	KindAuthorization:  {http.StatusForbidden, ErrCodeInsufficientPermissions, "Access denied"},
	KindNotFound:       {http.StatusNotFound, ErrCodeNotFound, "Resource not found"},
	KindConflict:       {http.StatusConflict, ErrCodeConflict, "Resource conflict"},
	KindInvalidState:   {http.StatusBadRequest, ErrCodeInvalidState, "Invalid state"},
	KindRateLimited:    {http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests"},
	KindTechnical:      {http.StatusInternalServerError, ErrCodeInternalError, "Technical error"},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindTechnical]
}

// Error is a typed domain failure raised where it is detected.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches field-level details to the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func newError(kind Kind, message string) *Error {
	meta := MetadataFor(kind)
	if message == "" {
		message = meta.PublicMessage
	}
	return &Error{Kind: kind, Code: meta.Code, Message: message}
}

func Validation(message string, details interface{}) *Error {
	return newError(KindValidation, message).WithDetails(details)
}

// FieldValidation is a Validation error for a single field.
func FieldValidation(field, problem string) *Error {
	return Validation("Validation failed", map[string]string{field: problem})
}

func Authentication(message string) *Error {
	return newError(KindAuthentication, message)
}

func InvalidCredentials() *Error {
	err := newError(KindAuthentication, "Invalid username or password")
	err.Code = ErrCodeInvalidCredentials
	return err
}

func Authorization(message string) *Error {
	return newError(KindAuthorization, message)
}

// NotFound reports a missing (or archived) entity.
func NotFound(entity string, id uint64) *Error {
	return newError(KindNotFound, fmt.Sprintf("%s %d not found", capitalize(entity), id))
}

func Conflict(message string) *Error {
	return newError(KindConflict, message)
}

func InvalidState(message string) *Error {
	return newError(KindInvalidState, message)
}

func RateLimited() *Error {
	return newError(KindRateLimited, "")
}

// Technical wraps an unexpected failure. The cause is logged, never rendered.
func Technical(err error, message string) *Error {
	e := newError(KindTechnical, message)
	e.cause = err
	return e
}

// As extracts a typed error from err's chain.
func As(err error) (*Error, bool) {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsKind reports whether err carries a typed error of the given kind.
func IsKind(err error, kind Kind) bool {
	typed, ok := As(err)
	return ok && typed.Kind == kind
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Handle translates err into a response. It is the only place failures are
// mapped to HTTP status codes.
func Handle(c *gin.Context, err error) {
	if err == nil {
		return
	}

	typed := classify(err)
	meta := MetadataFor(typed.Kind)

	body := &APIError{Code: typed.Code, Message: typed.Message, Details: typed.Details}
	if typed.Kind == KindTechnical {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request.technical_error")
		body = &APIError{Code: meta.Code, Message: meta.PublicMessage}
	}

	_ = c.Error(err)
	RespondWithError(c, meta.HTTPStatus, body)
}

func classify(err error) *Error {
	if typed, ok := As(err); ok {
		return typed
	}
	switch {
	case stdErrors.Is(err, gorm.ErrRecordNotFound):
		return newError(KindNotFound, "")
	case stdErrors.Is(err, gorm.ErrDuplicatedKey):
		return newError(KindConflict, "A record with the same unique value already exists")
	}
	return Technical(err, "")
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: message})
}

func capitalize(s string) string {
	if s == "" {
		return "Resource"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
