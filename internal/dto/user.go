package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// UserDTO represents a user in API responses. The password hash is never exposed.
type UserDTO struct {
	ID             uint64     `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"firstName"`
	LastName       *string    `json:"lastName"`
	Email          string     `json:"email"`
	Department     *string    `json:"department"`
	RoleID         uint64     `json:"roleId"`
	Role           string     `json:"role"`
	Active         bool       `json:"active"`
	PasswordChange bool       `json:"passwordChange"`
	LastLoginDate  *time.Time `json:"lastLoginDate"`
	Archived       bool       `json:"archived"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	User      UserDTO    `json:"user"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{ID: role.ID, Name: role.Name}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Department:     user.Department,
		RoleID:         user.RoleID,
		Role:           user.Role.Name,
		Active:         user.Active,
		PasswordChange: user.PasswordChange,
		LastLoginDate:  user.LastLoginDate,
		Archived:       user.Archived,
		ArchivedAt:     user.ArchivedAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

func ToRoleDTOs(roles []models.Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = ToRoleDTO(role)
	}
	return dtos
}
