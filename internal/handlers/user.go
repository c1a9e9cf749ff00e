package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns active users; roleId narrows by role
func (h *UserHandler) ListUsers(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	query, err := listQuery(c)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	roleID, err := optionalUintQuery(c, "roleId")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	result, err := h.userService.List(c.Request.Context(), principal, services.ListUsersInput{ListQuery: query, RoleID: roleID})
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(result.Items, result.Pagination, dto.ToUserDTO))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), principal, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Header("Location", location(c, user.ID))
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ArchiveUser archives the user; the account can no longer log in
func (h *UserHandler) ArchiveUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	if err := h.userService.Archive(c.Request.Context(), principal, id); err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) RestoreUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	user, err := h.userService.Restore(c.Request.Context(), principal, id)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ResetPassword sets a new password the user must change at next login
func (h *UserHandler) ResetPassword(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apierrors.Handle(c, err)
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ResetPassword(c.Request.Context(), principal, id, req.Password)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) ListRoles(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	roles, err := h.userService.ListRoles(c.Request.Context(), principal)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToRoleDTOs(roles)})
}
