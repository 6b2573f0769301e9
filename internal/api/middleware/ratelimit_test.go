package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/infrastructure/ratelimit"
)

type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (*domain.TokenClaims, error) {
	if raw == "good" {
		return &domain.TokenClaims{Subject: "alice"}, nil
	}
	return nil, domain.ErrTokenMalformed
}

func newLimitedEcho(t *testing.T, keyFn KeyFunc) *echo.Echo {
	t.Helper()
	store, err := ratelimit.NewStore(nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	l := ratelimit.NewLimiter(store, 3, time.Minute)

	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RateLimit(l, keyFn, zerolog.Nop()))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if errors.Is(err, domain.ErrRateLimited) {
			_ = c.NoContent(http.StatusTooManyRequests)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	return e
}

func TestRateLimit_RejectsAfterLimit(t *testing.T) {
	e := newLimitedEcho(t, KeyByIP())

	for i := 1; i <= 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		want := http.StatusOK
		if i == 4 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "3" {
			t.Fatalf("missing limit header")
		}
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for another ip, got %d", rec.Code)
	}
}

func TestRateLimit_UserBucketsFollowSubject(t *testing.T) {
	e := newLimitedEcho(t, KeyByUser(stubVerifier{}))

	send := func(remote, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = remote
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	// The same user from different addresses shares one bucket.
	for i, remote := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		if code := send(remote, "good"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send("10.0.0.4:1", "good"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	// An invalid token falls back to the caller's address.
	if code := send("10.0.0.4:1", "bad"); code != http.StatusOK {
		t.Fatalf("expected ip fallback to allow, got %d", code)
	}
}
