package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
)

// currentUser returns the caller injected by middleware.RequireScopes. A
// missing user means the route was registered without the middleware; the
// request is treated as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}
