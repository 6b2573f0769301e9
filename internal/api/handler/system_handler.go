package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Fibonacci runs CPU-bound work on a bounded pool.
type Fibonacci interface {
	Fibonacci(ctx context.Context, n int) (int64, error)
}

// SystemHandler serves the root banner, the compute endpoint and the plain
// health check.
type SystemHandler struct {
	compute Fibonacci
}

func NewSystemHandler(compute Fibonacci) *SystemHandler {
	return &SystemHandler{compute: compute}
}

// Root handles GET /.
//
// @Summary      Service banner
// @Tags         system
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Storefront API. See /swagger/index.html for the API reference."})
}

// Compute handles GET /api/v2/compute.
//
// @Summary      Fibonacci number, computed off the request goroutine pool
// @Tags         system
// @Produce      json
// @Param        n    query     int  true  "Fibonacci position"  minimum(1)  maximum(40)
// @Success      200  {object}  computeResponse
// @Failure      400  {object}  errorResponse
// @Router       /api/v2/compute [get]
func (h *SystemHandler) Compute(c echo.Context) error {
	var req computeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fib, err := h.compute.Fibonacci(c.Request().Context(), req.N)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, computeResponse{Fib: fib})
}

// Health handles GET /api/v2/health with a plain-text body.
//
// @Summary      Plain-text health check
// @Tags         system
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /api/v2/health [get]
func (h *SystemHandler) Health(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	c.SetCookie(&http.Cookie{Name: "app", Value: "storefront", Path: "/", HttpOnly: true})
	return c.String(http.StatusOK, "ok")
}
