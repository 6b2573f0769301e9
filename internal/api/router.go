package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/ulule/limiter/v3"

	_ "github.com/storefront/storefront-api/docs"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/infrastructure/ratelimit"
	"github.com/storefront/storefront-api/pkg/logger"
)

// RateLimit is a request budget per window.
type RateLimit struct {
	Requests int64
	Period   time.Duration
}

// Options holds the HTTP-level tunables.
type Options struct {
	CORSOrigins   []string
	CacheTTL      time.Duration
	IPLimit       RateLimit
	UserLimit     RateLimit
	MaxUploadSize string
}

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Logger       zerolog.Logger
	Auth         ports.AuthService
	Authorizer   ports.Authorizer
	Tokens       ports.TokenVerifier
	Users        ports.UserService
	Items        ports.ItemService
	Compute      handler.Fibonacci
	Exporter     handler.Exporter
	Files        ports.FileStore
	Cache        ports.ResponseCache
	LimiterStore limiter.Store
	Health       map[string]handler.PingFunc
	Options      Options
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	log := deps.Logger
	opts := deps.Options
	if opts.MaxUploadSize == "" {
		opts.MaxUploadSize = "64M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestContextLogger(log))
	e.Use(requestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(middleware.ProcessTime())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderXRequestID, "X-Process-Time", "X-Cache"},
	}))
	e.Use(echomiddleware.GzipWithConfig(echomiddleware.GzipConfig{
		MinLength: 512,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/v2/ws/")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	itemHandler := handler.NewItemHandler(deps.Items)
	userHandler := handler.NewUserHandler(deps.Users)
	systemHandler := handler.NewSystemHandler(deps.Compute)
	streamHandler := handler.NewStreamHandler(deps.Exporter, log)
	fileHandler := handler.NewFileHandler(deps.Files)
	wsHandler := handler.NewWebsocketHandler(log)
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Per-route middleware ---
	ipLimit := middleware.RateLimit(
		ratelimit.NewLimiter(deps.LimiterStore, opts.IPLimit.Requests, opts.IPLimit.Period),
		middleware.KeyByIP(), log)
	userLimit := middleware.RateLimit(
		ratelimit.NewLimiter(deps.LimiterStore, opts.UserLimit.Requests, opts.UserLimit.Period),
		middleware.KeyByUser(deps.Tokens), log)
	cached := middleware.CacheResponses(deps.Cache, service.ItemsCacheNamespace, opts.CacheTTL, log)
	requireAuth := middleware.RequireScopes(deps.Authorizer)
	canRead := middleware.RequireScopes(deps.Authorizer, domain.ScopeItemsRead)
	canWrite := middleware.RequireScopes(deps.Authorizer, domain.ScopeItemsWrite)
	canReadWrite := middleware.RequireScopes(deps.Authorizer, domain.ScopeItemsWrite, domain.ScopeItemsRead)
	isAdmin := middleware.RequireScopes(deps.Authorizer, domain.ScopeUsersAdmin)

	// --- Operational routes ---
	e.GET("/", systemHandler.Root)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- v1: auth and open item CRUD ---
	v1 := e.Group("/api/v1")
	v1.POST("/auth/signup", authHandler.Signup, ipLimit)
	v1.POST("/auth/token", authHandler.Token, ipLimit)
	v1.GET("/auth/me", authHandler.Me, requireAuth)

	v1.GET("/store/items", itemHandler.List)
	v1.GET("/store/items/paged", itemHandler.ListPage)
	v1.GET("/store/items/:id", itemHandler.Get)
	v1.POST("/store/items", itemHandler.Create)
	v1.PATCH("/store/items/:id", itemHandler.Update)

	// --- v2: scoped, limited and cached ---
	v2 := e.Group("/api/v2")
	v2.GET("/store/items/paged", itemHandler.ListPageAudited, ipLimit, canReadWrite, cached)
	v2.GET("/store/items", itemHandler.List, ipLimit, cached)
	v2.GET("/store/items/:id", itemHandler.Get, ipLimit)
	v2.POST("/store/items", itemHandler.Create, userLimit, canWrite)
	v2.POST("/store/items/bulk", itemHandler.CreateBulk, userLimit, canWrite)
	v2.PATCH("/store/items/:id", itemHandler.Update, userLimit, canWrite)
	v2.GET("/store/items/:id/summary", itemHandler.Summary)
	v2.POST("/store/items/:id/purchase", itemHandler.Purchase, userLimit, canRead)

	v2.GET("/users", userHandler.List, userLimit, isAdmin)
	v2.GET("/users/:id", userHandler.Get, userLimit, isAdmin)
	v2.PATCH("/users/:id", userHandler.Update, userLimit, isAdmin)

	v2.GET("/compute", systemHandler.Compute)
	v2.GET("/health", systemHandler.Health)

	v2.GET("/stream/items.csv", streamHandler.CSV)
	v2.GET("/stream/items.txt", streamHandler.Text)
	v2.GET("/stream/items.json", streamHandler.JSON)

	files := v2.Group("/files")
	files.POST("/upload", fileHandler.Upload, echomiddleware.BodyLimit(opts.MaxUploadSize))
	files.GET("/download/:filename", fileHandler.Download)
	files.GET("/list", fileHandler.List)

	v2.GET("/ws/echo", wsHandler.Echo)

	return e
}

// requestContextLogger stores a logger tagged with the request id in the
// request context.
func requestContextLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), log, id)))
			return next(c)
		}
	}
}

// requestLogger feeds one structured line per request into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Error != nil:
				ev = log.Error().Err(v.Error)
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error()
			case v.Status >= http.StatusBadRequest:
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
