package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// KeyFunc derives the limiter bucket for a request. scope labels the
// rejection metric.
type KeyFunc func(c echo.Context) (scope, key string)

// KeyByIP buckets requests by client address and path.
func KeyByIP() KeyFunc {
	return func(c echo.Context) (string, string) {
		return "ip", "ip:" + c.RealIP() + ":" + c.Request().URL.Path
	}
}

// KeyByUser buckets requests by the token subject and path. Only the
// token's signature and expiry are checked here; requests without a usable
// token fall back to the IP bucket.
func KeyByUser(verifier ports.TokenVerifier) KeyFunc {
	byIP := KeyByIP()
	return func(c echo.Context) (string, string) {
		raw := BearerToken(c.Request())
		if raw != "" {
			if claims, err := verifier.Verify(raw); err == nil {
				return "user", "user:" + claims.Subject + ":" + c.Request().URL.Path
			}
		}
		return byIP(c)
	}
}

// RateLimit rejects a request with 429 once its bucket is exhausted. Store
// failures let the request through.
func RateLimit(l *limiter.Limiter, keyFn KeyFunc, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, key := keyFn(c)

			lctx, err := l.Get(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				metrics.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
				return domain.ErrTooManyRequests
			}
			return next(c)
		}
	}
}
