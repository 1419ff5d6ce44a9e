package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive"`
}

// List returns every user, or only active ones with ?active=true.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		users []*model.User
		err   error
	)
	if c.QueryParam("active") == "true" {
		users, err = h.Users.ListActiveUsers(ctx)
	} else {
		users, err = h.Users.ListUsers(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create registers a user. Creating an admin needs an admin caller.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Role == model.RoleAdmin && !middleware.IsAdmin(c) {
		return errorJSON(c, http.StatusForbidden, "Only admins can create admin users")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.CreateUser(ctx, service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return notFound(c, "User")
	}
	return c.JSON(http.StatusOK, u)
}

// Update lets users edit their own name and email. Role and active flag
// changes are reserved for admins.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if !middleware.CanAccess(c, id) {
		return errorJSON(c, http.StatusForbidden, "Forbidden")
	}
	var req updateUserReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if (req.Role != nil || req.IsActive != nil) && !middleware.IsAdmin(c) {
		return errorJSON(c, http.StatusForbidden, "Only admins can change role or status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.UpdateUser(ctx, id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return notFound(c, "User")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if !middleware.CanAccess(c, id) {
		return errorJSON(c, http.StatusForbidden, "Forbidden")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(c, "User")
	}
	return c.NoContent(http.StatusNoContent)
}
