package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/pkg/logger"
)

// errorBody is the inner object of the error envelope.
type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error errorBody `json:"error"`
	Path  string    `json:"path"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Adds the Bearer challenge on 401 and 403 responses.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": {"code", "message", "fields"?}, "path"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		resp := errorResponse{Error: body, Path: c.Request().URL.Path}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorBody) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorBody{Code: statusCode(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
		challenge := "Bearer"
		if len(forbidden.Required) > 0 {
			challenge = fmt.Sprintf(`Bearer scope="%s"`, strings.Join(forbidden.Required, " "))
		}
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
		return http.StatusForbidden, errorBody{Code: "insufficient_scope", Message: forbidden.Error()}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		status := kindStatus(de.Kind)
		if status == http.StatusUnauthorized {
			metrics.AuthFailuresTotal.WithLabelValues("unauthenticated").Inc()
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		if status != http.StatusInternalServerError {
			return status, errorBody{Code: de.Code, Message: de.Message, Fields: de.Fields}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	reqLog := logger.FromContext(c.Request().Context(), log)
	reqLog.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorBody{Code: "internal_server_error", Message: "Internal server error."}
}

func kindStatus(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// statusCode derives a machine code from an HTTP status, e.g. 404 -> "not_found".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
