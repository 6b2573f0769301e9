package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/infrastructure/cache"
)

func TestCacheResponses_HitAfterMiss(t *testing.T) {
	store := cache.NewMemoryCache(16, time.Minute)
	calls := 0

	e := echo.New()
	e.GET("/items", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, CacheResponses(store, "items", time.Minute, zerolog.Nop()))

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	first := get("/items?b=2&a=1")
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected MISS, got %q", first.Header().Get("X-Cache"))
	}

	// Query parameter order does not matter.
	second := get("/items?a=1&b=2")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected HIT, got %q", second.Header().Get("X-Cache"))
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}

	if rec := get("/items?a=2"); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("different query should miss")
	}
}

func TestCacheResponses_SkipsErrorsAndClears(t *testing.T) {
	store := cache.NewMemoryCache(16, time.Minute)
	status := http.StatusNotFound

	e := echo.New()
	e.GET("/items", func(c echo.Context) error {
		return c.JSON(status, map[string]string{"k": "v"})
	}, CacheResponses(store, "items", time.Minute, zerolog.Nop()))

	get := func() string {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
		return rec.Header().Get("X-Cache")
	}

	get()
	status = http.StatusOK
	if got := get(); got != "MISS" {
		t.Fatalf("non-200 response must not be cached, got %s", got)
	}
	if got := get(); got != "HIT" {
		t.Fatalf("expected HIT, got %s", got)
	}

	if err := store.Clear(context.Background(), "items"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := get(); got != "MISS" {
		t.Fatalf("expected MISS after clear, got %s", got)
	}
}
