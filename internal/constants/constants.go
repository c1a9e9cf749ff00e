package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"

	SessionCookieName = "crm_session"
	RequestIDHeader   = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxNameLength     = 100
	MaxTextLength     = 1000

	MaxLoginBodyBytes = 4 << 10
)

// Pagination defaults
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)
