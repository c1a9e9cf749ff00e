package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/auth"
	"github.com/yukikurage/crm-api/internal/config"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

func TestSignupCreatesViewer(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, SignupInput{
		Username: "newbie", Password: "Password1", FirstName: "New", Email: "New@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Viewer", user.Role.Name)
	assert.Equal(t, "new@example.com", user.Email)

	_, err = env.auth.Signup(ctx, SignupInput{
		Username: "newbie", Password: "Password1", FirstName: "New", Email: "other@example.com",
	})
	requireKind(t, err, apierrors.KindConflict)

	_, err = env.auth.Signup(ctx, SignupInput{Username: "x", Password: "short", FirstName: "X", Email: "x@example.com"})
	requireKind(t, err, apierrors.KindValidation)
}

func TestLogin(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	tokens, err := auth.NewTokenIssuer(config.JWTConfig{Secret: "test-secret", Issuer: "crm-api", TTL: time.Hour})
	require.NoError(t, err)
	env.auth = NewAuthService(env.repos, tokens)

	_, err = env.auth.Signup(ctx, SignupInput{
		Username: "newbie", Password: "Password1", FirstName: "New", Email: "new@example.com",
	})
	require.NoError(t, err)

	result, err := env.auth.Login(ctx, LoginInput{Username: "newbie", Password: "Password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotNil(t, result.User.LastLoginDate)

	claims, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, id)
	assert.Equal(t, "Viewer", claims.Role)

	_, err = env.auth.Login(ctx, LoginInput{Username: "newbie", Password: "wrong-password"})
	typed := requireKind(t, err, apierrors.KindAuthentication)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, typed.Code)

	_, err = env.auth.Login(ctx, LoginInput{Username: "ghost", Password: "Password1"})
	requireKind(t, err, apierrors.KindAuthentication)
}

func TestArchivedUserCannotLogin(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user, err := env.auth.Signup(ctx, SignupInput{
		Username: "leaver", Password: "Password1", FirstName: "Leaver", Email: "leaver@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, env.users.Archive(ctx, admin, user.ID))

	_, err = env.auth.Login(ctx, LoginInput{Username: "leaver", Password: "Password1"})
	typed := requireKind(t, err, apierrors.KindAuthentication)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, typed.Code)
}
