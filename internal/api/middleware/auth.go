package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/ports"
)

// UserKey is the context key under which RequireScopes stores the caller.
const UserKey = "user"

// RequireScopes resolves the bearer token through authz and injects the
// authenticated *domain.User into the context. With no scopes it only
// requires a valid token for an active user.
func RequireScopes(authz ports.Authorizer, scopes ...string) echo.MiddlewareFunc {
	required := append([]string(nil), scopes...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authz.Authorize(c.Request().Context(), BearerToken(c.Request()), required)
			if err != nil {
				return err
			}
			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
