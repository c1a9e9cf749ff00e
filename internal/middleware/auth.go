package middleware

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/logging"
	"github.com/yukikurage/crm-api/internal/policy"
)

// PrincipalResolver turns request credentials into a principal.
type PrincipalResolver interface {
	ResolveBearer(ctx context.Context, header string) (policy.Principal, error)
	ResolveUserID(ctx context.Context, userID uint64) (policy.Principal, error)
}

// RequireAuth authenticates the request by bearer token or, without an
// Authorization header, by session cookie.
func RequireAuth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			principal policy.Principal
			err       error
		)
		if header := c.GetHeader("Authorization"); header != "" {
			principal, err = resolver.ResolveBearer(ctx, header)
		} else {
			userID, ok := sessionUserID(sessions.Default(c).Get(constants.ContextKeyUserID))
			if !ok {
				apierrors.Handle(c, apierrors.Authentication(""))
				return
			}
			principal, err = resolver.ResolveUserID(ctx, userID)
		}
		if err != nil {
			apierrors.Handle(c, err)
			return
		}

		// Store principal in context for easy access in handlers
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Request = c.Request.WithContext(logging.WithFields(ctx, map[string]any{
			"user_id": principal.UserID,
			"role":    principal.Role.String(),
		}))
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

func sessionUserID(userID any) (uint64, bool) {
	switch v := userID.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
