package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"gorm.io/gorm"
)

// UserLookup loads an active user with its role preloaded.
type UserLookup interface {
	FindActive(ctx context.Context, id uint64) (*models.User, error)
}

// Resolver turns request credentials into a Principal.
type Resolver struct {
	users  UserLookup
	tokens *TokenIssuer
}

func NewResolver(users UserLookup, tokens *TokenIssuer) *Resolver {
	return &Resolver{users: users, tokens: tokens}
}

// ResolveBearer authenticates an "Authorization: Bearer" header value.
func (r *Resolver) ResolveBearer(ctx context.Context, header string) (policy.Principal, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return policy.Principal{}, apierrors.Authentication("Malformed authorization header")
	}
	if r.tokens == nil {
		return policy.Principal{}, apierrors.Authentication("Bearer tokens are not enabled")
	}

	claims, err := r.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return policy.Principal{}, apierrors.Authentication("Invalid or expired token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return policy.Principal{}, apierrors.Authentication("Invalid token subject")
	}
	return r.ResolveUserID(ctx, userID)
}

// ResolveUserID builds the principal for a session-bound user id. Archived or
// deactivated users no longer authenticate.
func (r *Resolver) ResolveUserID(ctx context.Context, userID uint64) (policy.Principal, error) {
	user, err := r.users.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Principal{}, apierrors.Authentication("Session user no longer exists")
		}
		return policy.Principal{}, fmt.Errorf("failed to resolve principal: %w", err)
	}
	if !user.Active {
		return policy.Principal{}, apierrors.Authentication("User account is inactive")
	}
	return PrincipalFor(user), nil
}

// PrincipalFor maps a loaded user to its principal.
func PrincipalFor(user *models.User) policy.Principal {
	return policy.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     policy.ParseRole(user.Role.Name),
	}
}
