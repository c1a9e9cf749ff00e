package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/crm-api/internal/auth"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

// AuthService handles signup and credential checks.
type AuthService struct {
	repos  *repository.Repositories
	tokens *auth.TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService. tokens may be nil, in which case
// login establishes a session only.
func NewAuthService(repos *repository.Repositories, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{repos: repos, tokens: tokens, now: time.Now}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username  string  `json:"username" validate:"required,max=100"`
	Password  string  `json:"password" validate:"required"`
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     string  `json:"email" validate:"required,email_address,max=255"`
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is an authenticated user plus an optional bearer token.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Signup self-registers a user with the Viewer role.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Email = normalizeEmail(input.Email)
	problems := validateInput(input)
	problems.checkPassword("password", &input.Password)
	if err := problems.err(); err != nil {
		return nil, err
	}

	role, err := s.repos.Roles.FindByName(ctx, string(policy.RoleViewer))
	if err != nil {
		return nil, fmt.Errorf("failed to find viewer role: %w", err)
	}

	user := &models.User{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  optionalString(input.LastName),
		Email:     input.Email,
		RoleID:    role.ID,
		Active:    true,
	}
	for _, field := range userUniques(user) {
		if err := policy.CheckUnique(ctx, s.repos.Users, "user", field, 0); err != nil {
			return nil, err
		}
	}

	if user.PasswordHash, err = auth.HashPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflict("user with the same username or email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Uint64("user_id", user.ID).Msg("auth.signup")
	return user, nil
}

// Login verifies credentials and returns the authenticated user. Archived,
// missing and wrong-password accounts fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apierrors.InvalidCredentials()
	}

	user, err := s.repos.Users.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, apierrors.InvalidCredentials()
	}
	if !user.Active {
		return nil, apierrors.Authentication("User account is inactive")
	}

	now := s.now()
	if err := s.repos.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginDate = &now

	result := &LoginResult{User: user}
	if s.tokens != nil {
		result.Token, result.ExpiresAt, err = s.tokens.Mint(now, user.ID, user.Role.Name)
		if err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Info().Uint64("user_id", user.ID).Msg("auth.login")
	return result, nil
}
