package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/auth"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

// UserService handles user administration and the caller's own profile.
type UserService struct {
	repos     *repository.Repositories
	lifecycle *Lifecycle[models.User]
}

// NewUserService creates a new UserService. Archiving a user deactivates it
// and restoring always reactivates it; the pre-archive active flag is not kept.
func NewUserService(repos *repository.Repositories) *UserService {
	lifecycle := newLifecycle[models.User]("user", repos.Users, userUniques)
	lifecycle.onArchive = func(policy.Principal) map[string]any { return map[string]any{"active": false} }
	lifecycle.onRestore = func(policy.Principal) map[string]any { return map[string]any{"active": true} }
	return &UserService{repos: repos, lifecycle: lifecycle}
}

func userUniques(user *models.User) []policy.UniqueField {
	return []policy.UniqueField{
		{Field: "username", Column: "username", Value: user.Username},
		{Field: "email", Column: "email", Value: user.Email},
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Username   string  `json:"username" validate:"required,max=100"`
	Password   string  `json:"password" validate:"required"`
	FirstName  string  `json:"firstName" validate:"required,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Email      string  `json:"email" validate:"required,email_address,max=255"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	RoleID     uint64  `json:"roleId" validate:"required"`
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Username   *string `json:"username" validate:"omitempty,max=100"`
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email_address,max=255"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	RoleID     *uint64 `json:"roleId"`
	Active     *bool   `json:"active"`
}

// ProfileInput is the subset of user fields a caller may change on themselves
type ProfileInput struct {
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email_address,max=255"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	ListQuery
	RoleID *uint64
}

func (s *UserService) List(ctx context.Context, principal policy.Principal, input ListUsersInput) (*ListResult[models.User], error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	params, err := input.resolve(repository.UserSortColumns)
	if err != nil {
		return nil, err
	}

	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{ListParams: params, RoleID: input.RoleID})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return newListResult(users, params, total), nil
}

func (s *UserService) Get(ctx context.Context, principal policy.Principal, id uint64) (*models.User, error) {
	return s.lifecycle.Get(ctx, principal, id)
}

// Create creates a user with an initial password the user must change.
func (s *UserService) Create(ctx context.Context, principal policy.Principal, input CreateUserInput) (*models.User, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Email = normalizeEmail(input.Email)
	problems := validateInput(input)
	problems.checkPassword("password", &input.Password)
	if err := problems.err(); err != nil {
		return nil, err
	}

	if err := s.requireRole(ctx, input.RoleID); err != nil {
		return nil, err
	}
	user := &models.User{
		Username:       input.Username,
		FirstName:      input.FirstName,
		LastName:       optionalString(input.LastName),
		Email:          input.Email,
		Department:     optionalString(input.Department),
		RoleID:         input.RoleID,
		Active:         true,
		PasswordChange: true,
	}
	for _, field := range userUniques(user) {
		if err := s.lifecycle.checkUnique(ctx, field, 0); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, s.lifecycle.translateWrite(err, "create")
	}
	return user, nil
}

// Update applies a partial update to an active user.
func (s *UserService) Update(ctx context.Context, principal policy.Principal, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}

	input.Username = trimPtr(input.Username)
	input.FirstName = trimPtr(input.FirstName)
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	problems := validateInput(input)
	problems.requirePresent("username", input.Username)
	problems.requirePresent("firstName", input.FirstName)
	problems.requirePresent("email", input.Email)
	if err := problems.err(); err != nil {
		return nil, err
	}

	user, err := s.lifecycle.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
		if err := s.lifecycle.checkUnique(ctx, policy.UniqueField{Field: "username", Column: "username", Value: user.Username}, id); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		user.Email = *input.Email
		if err := s.lifecycle.checkUnique(ctx, policy.UniqueField{Field: "email", Column: "email", Value: user.Email}, id); err != nil {
			return nil, err
		}
	}
	if input.RoleID != nil {
		if err := s.requireRole(ctx, *input.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = *input.RoleID
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = optionalString(input.LastName)
	}
	if input.Department != nil {
		user.Department = optionalString(input.Department)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, s.lifecycle.translateWrite(err, "update")
	}
	return user, nil
}

// Archive archives the user and marks the account inactive.
func (s *UserService) Archive(ctx context.Context, principal policy.Principal, id uint64) error {
	return s.lifecycle.Archive(ctx, principal, id)
}

// Restore reactivates an archived user unless its username or email was reused.
func (s *UserService) Restore(ctx context.Context, principal policy.Principal, id uint64) (*models.User, error) {
	return s.lifecycle.Restore(ctx, principal, id)
}

// ResetPassword sets a new password chosen by an editor. The user must
// change it at next login.
func (s *UserService) ResetPassword(ctx context.Context, principal policy.Principal, id uint64, password string) (*models.User, error) {
	if err := principal.Require(policy.ActionEdit); err != nil {
		return nil, err
	}
	problems := fieldErrors{}
	problems.checkPassword("password", &password)
	if err := problems.err(); err != nil {
		return nil, err
	}

	user, err := s.lifecycle.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordChange = true

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return user, nil
}

// Profile returns the caller's own user record.
func (s *UserService) Profile(ctx context.Context, principal policy.Principal) (*models.User, error) {
	return s.lifecycle.findActive(ctx, principal.UserID)
}

// UpdateProfile lets any authenticated user edit their own contact details.
func (s *UserService) UpdateProfile(ctx context.Context, principal policy.Principal, input ProfileInput) (*models.User, error) {
	input.FirstName = trimPtr(input.FirstName)
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	problems := validateInput(input)
	problems.requirePresent("firstName", input.FirstName)
	problems.requirePresent("email", input.Email)
	if err := problems.err(); err != nil {
		return nil, err
	}

	user, err := s.lifecycle.findActive(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		user.Email = *input.Email
		if err := s.lifecycle.checkUnique(ctx, policy.UniqueField{Field: "email", Column: "email", Value: user.Email}, user.ID); err != nil {
			return nil, err
		}
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = optionalString(input.LastName)
	}
	if input.Department != nil {
		user.Department = optionalString(input.Department)
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, s.lifecycle.translateWrite(err, "update")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, principal policy.Principal, current, next string) error {
	problems := fieldErrors{}
	if current == "" {
		problems.add("currentPassword", "is required")
	}
	problems.checkPassword("newPassword", &next)
	if err := problems.err(); err != nil {
		return err
	}

	user, err := s.lifecycle.findActive(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apierrors.FieldValidation("currentPassword", "is incorrect")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChange = false
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// ListRoles returns the role table.
func (s *UserService) ListRoles(ctx context.Context, principal policy.Principal) ([]models.Role, error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	roles, err := s.repos.Roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *UserService) requireRole(ctx context.Context, roleID uint64) error {
	if _, err := s.repos.Roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.FieldValidation("roleId", fmt.Sprintf("role %d does not exist", roleID))
		}
		return fmt.Errorf("failed to find role: %w", err)
	}
	return nil
}
