package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/auth"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
)

func (e *testEnv) user(t *testing.T, username, email string, role policy.Role) *models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), admin, CreateUserInput{
		Username:  username,
		Password:  "Password1",
		FirstName: "Test",
		Email:     email,
		RoleID:    e.roleID(t, role),
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user := env.user(t, "jane", " Jane@Example.com", policy.RoleUser)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "User", user.Role.Name)
	assert.True(t, user.Active)
	assert.True(t, user.PasswordChange)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "Password1"))

	_, err := env.users.Create(ctx, admin, CreateUserInput{
		Username: "jane", Password: "Password1", FirstName: "Other", Email: "other@example.com", RoleID: user.RoleID,
	})
	requireKind(t, err, apierrors.KindConflict)

	_, err = env.users.Create(ctx, admin, CreateUserInput{
		Username: "bad", Password: "short", FirstName: "Bad", Email: "not-an-email", RoleID: 99,
	})
	typed := requireKind(t, err, apierrors.KindValidation)
	assert.Contains(t, typed.Details, "email")
	assert.Contains(t, typed.Details, "password")

	_, err = env.users.Create(ctx, admin, CreateUserInput{
		Username: "ghost", Password: "Password1", FirstName: "Ghost", Email: "ghost@example.com", RoleID: 99,
	})
	typed = requireKind(t, err, apierrors.KindValidation)
	assert.Contains(t, typed.Details, "roleId")
}

func TestUserRestoreConflictsOnReusedEmail(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	first := env.user(t, "jane", "jane@example.com", policy.RoleUser)
	require.NoError(t, env.users.Archive(ctx, admin, first.ID))

	archived, err := env.repos.Users.FindAny(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	env.user(t, "jane2", "jane@example.com", policy.RoleUser)

	_, err = env.users.Restore(ctx, admin, first.ID)
	typed := requireKind(t, err, apierrors.KindConflict)
	assert.Contains(t, typed.Message, "email")
}

func TestUserRestoreReactivates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user := env.user(t, "jane", "jane@example.com", policy.RoleUser)
	require.NoError(t, env.users.Archive(ctx, manager, user.ID))

	restored, err := env.users.Restore(ctx, manager, user.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
	assert.False(t, restored.Archived)

	inactive := false
	_, err = env.users.Update(ctx, manager, user.ID, UpdateUserInput{Active: &inactive})
	require.NoError(t, err)
	require.NoError(t, env.users.Archive(ctx, manager, user.ID))

	restored, err = env.users.Restore(ctx, manager, user.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}

func TestUpdateUser(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	jane := env.user(t, "jane", "jane@example.com", policy.RoleUser)
	env.user(t, "john", "john@example.com", policy.RoleUser)

	taken := "john"
	_, err := env.users.Update(ctx, admin, jane.ID, UpdateUserInput{Username: &taken})
	requireKind(t, err, apierrors.KindConflict)

	blank := "  "
	_, err = env.users.Update(ctx, admin, jane.ID, UpdateUserInput{FirstName: &blank})
	requireKind(t, err, apierrors.KindValidation)

	same := "jane@example.com"
	managerRole := env.roleID(t, policy.RoleManager)
	updated, err := env.users.Update(ctx, admin, jane.ID, UpdateUserInput{Email: &same, RoleID: &managerRole})
	require.NoError(t, err)
	assert.Equal(t, "Manager", updated.Role.Name)
}

func TestResetPasswordRequiresEdit(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user := env.user(t, "jane", "jane@example.com", policy.RoleUser)

	_, err := env.users.ResetPassword(ctx, viewer, user.ID, "NewPassword1")
	requireKind(t, err, apierrors.KindAuthorization)

	_, err = env.users.ResetPassword(ctx, manager, user.ID, "short")
	requireKind(t, err, apierrors.KindValidation)

	updated, err := env.users.ResetPassword(ctx, manager, user.ID, "NewPassword1")
	require.NoError(t, err)
	assert.True(t, updated.PasswordChange)
	assert.True(t, auth.CheckPassword(updated.PasswordHash, "NewPassword1"))
}

func TestProfileAndChangePassword(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user := env.user(t, "jane", "jane@example.com", policy.RoleViewer)
	self := policy.Principal{UserID: user.ID, Username: user.Username, Role: policy.RoleViewer}

	department := "Sales"
	profile, err := env.users.UpdateProfile(ctx, self, ProfileInput{Department: &department})
	require.NoError(t, err)
	require.NotNil(t, profile.Department)
	assert.Equal(t, "Sales", *profile.Department)

	err = env.users.ChangePassword(ctx, self, "wrong", "Another12")
	typed := requireKind(t, err, apierrors.KindValidation)
	assert.Contains(t, typed.Details, "currentPassword")

	require.NoError(t, env.users.ChangePassword(ctx, self, "Password1", "Another12"))
	stored, err := env.users.Profile(ctx, self)
	require.NoError(t, err)
	assert.False(t, stored.PasswordChange)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "Another12"))
}

func TestListRoles(t *testing.T) {
	env := setupServices(t)

	roles, err := env.users.ListRoles(context.Background(), viewer)
	require.NoError(t, err)
	require.Len(t, roles, 4)
	assert.Equal(t, "Admin", roles[0].Name)
}
