package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// UserHandler exposes account administration.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/v2/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Max users to return"  minimum(1)  maximum(100)  default(50)
// @Param        offset  query     int  false  "Users to skip"        minimum(0)
// @Success      200     {array}   domain.User
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/v2/users [get]
func (h *UserHandler) List(c echo.Context) error {
	var req listUsersRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	filter := domain.UserFilter{Limit: 50, Offset: req.Offset}
	if req.Limit != nil {
		filter.Limit = *req.Limit
	}

	users, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/v2/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/v2/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	var req userIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PATCH /api/v2/users/:id. The username cannot change.
//
// @Summary      Partially update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v2/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), req.ID, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
