package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

// Counter is a fixed-window counter store.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// LoginRateLimitPolicy defines the login throttling window and limits.
type LoginRateLimitPolicy struct {
	Window    time.Duration
	IPLimit   int
	UserLimit int
}

func NewLoginRateLimitPolicy(cfg config.RateLimitConfig) LoginRateLimitPolicy {
	return LoginRateLimitPolicy{
		Window:    cfg.LoginWindow,
		IPLimit:   cfg.LoginIPLimit,
		UserLimit: cfg.LoginUserLimit,
	}
}

func (p LoginRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.UserLimit > 0)
}

// LoginRateLimit enforces per-IP and per-username attempt counters. Without a
// store it is a no-op.
func LoginRateLimit(policy LoginRateLimitPolicy, store Counter) gin.HandlerFunc {
	if store == nil || !policy.enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if policy.IPLimit > 0 {
			if ip := c.ClientIP(); ip != "" {
				if !checkLimit(c, store, policy, "login:ip:"+ip, "ip", policy.IPLimit) {
					return
				}
			}
		}

		if policy.UserLimit > 0 {
			body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxLoginBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					apierrors.Handle(c, apierrors.Validation("Request body too large", nil))
					return
				}
				apierrors.Handle(c, apierrors.Technical(err, "read request"))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))

			if username := extractUsername(body); username != "" {
				key := "login:user:" + hashValue(username)
				if !checkLimit(c, store, policy, key, "username", policy.UserLimit) {
					return
				}
			}
		}

		c.Next()
	}
}

func checkLimit(c *gin.Context, store Counter, policy LoginRateLimitPolicy, key, scope string, limit int) bool {
	ctx := c.Request.Context()
	count, err := store.IncrWithTTL(ctx, key, policy.Window)
	if err != nil {
		apierrors.Handle(c, apierrors.Technical(err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}

	zerolog.Ctx(ctx).Warn().
		Str("scope", scope).
		Int64("attempts", count).
		Int("limit", limit).
		Int("window_seconds", int(policy.Window.Seconds())).
		Msg("auth.rate_limit.blocked")
	apierrors.Handle(c, apierrors.RateLimited())
	return false
}

func extractUsername(payload []byte) string {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Username))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
