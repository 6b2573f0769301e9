package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// CacheResponses serves GET requests from the response cache, keyed by path
// and normalised query string, and stores successful JSON responses for ttl.
// Cache failures are logged and the request is served normally.
func CacheResponses(cache ports.ResponseCache, namespace string, ttl time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			key := req.URL.Path
			if q := req.URL.Query().Encode(); q != "" {
				key += "?" + q
			}

			body, ok, err := cache.Get(req.Context(), namespace, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("response cache read failed")
			}
			if ok {
				metrics.CacheLookupsTotal.WithLabelValues(namespace, "hit").Inc()
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			}
			metrics.CacheLookupsTotal.WithLabelValues(namespace, "miss").Inc()
			c.Response().Header().Set("X-Cache", "MISS")

			capture := &bodyCapture{ResponseWriter: c.Response().Writer}
			c.Response().Writer = capture
			if err := next(c); err != nil {
				return err
			}

			if c.Response().Status == http.StatusOK {
				if err := cache.Set(req.Context(), namespace, key, capture.buf.Bytes(), ttl); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("response cache write failed")
				}
			}
			return nil
		}
	}
}

// bodyCapture tees the response body into buf.
type bodyCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bodyCapture) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
