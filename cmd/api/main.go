// Command api serves the storefront HTTP API.
//
//	@title						Storefront API
//	@version					2.0
//	@description				Versioned item catalogue with JWT scopes, response caching and rate limiting.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storefront/storefront-api/internal/api"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/infrastructure/cache"
	"github.com/storefront/storefront-api/internal/infrastructure/db/memory"
	"github.com/storefront/storefront-api/internal/infrastructure/db/mongo"
	"github.com/storefront/storefront-api/internal/infrastructure/db/postgres"
	"github.com/storefront/storefront-api/internal/infrastructure/db/redis"
	"github.com/storefront/storefront-api/internal/infrastructure/queue"
	"github.com/storefront/storefront-api/internal/infrastructure/ratelimit"
	"github.com/storefront/storefront-api/internal/infrastructure/scheduler"
	"github.com/storefront/storefront-api/internal/infrastructure/storage"
	"github.com/storefront/storefront-api/internal/pkg/config"
	"github.com/storefront/storefront-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Init is a no-op once run has configured the logger.
		log := logger.Init(logger.Options{Service: "storefront-api"})
		log.Error().Err(err).Msg("api exited")
		os.Exit(1)
	}
}

// repositories is the persistence backend chosen by STORE_BACKEND.
type repositories struct {
	users ports.UserRepository
	items ports.ItemRepository
	ping  handler.PingFunc
	close func(context.Context)
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront-api",
		Env:     cfg.Env,
	})

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close(context.Background())

	health := map[string]handler.PingFunc{}
	if repos.ping != nil {
		health[cfg.StoreBackend] = repos.ping
	}

	// Redis backs the response cache and the rate limiter. Without it both
	// fall back to process-local stores.
	var redisClient *goredis.Client
	var responseCache ports.ResponseCache = cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	if cfg.Redis.Enabled {
		client, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using in-memory cache and rate limits")
		} else {
			redisClient = client
			defer client.Close()
			responseCache = redis.NewResponseCache(client)
			health["redis"] = redis.Ping(client)
		}
	}

	limiterStore, err := ratelimit.NewStore(redisClient)
	if err != nil {
		return err
	}

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.Workers.Background, logger.Component("queue"))
	dispatcher.Start(ctx)

	keys, err := service.NewKeySet(cfg.Auth.JWTKeyID, []byte(cfg.Auth.JWTSecret), cfg.Auth.PreviousKeys())
	if err != nil {
		return fmt.Errorf("signing keys: %w", err)
	}
	tokens := service.NewTokenCodec(keys)

	authService := service.NewAuthService(repos.users, service.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, cfg.Auth.TokenTTL,
		logger.Component("auth"),
		service.WithDefaultScopes(cfg.Auth.SignupDefaultScopes),
		service.WithSignupScopes(cfg.Auth.SignupAllowedScopes))
	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	itemService := service.NewItemService(repos.items, responseCache, dispatcher, logger.Component("items"),
		service.WithMaxPageSize(cfg.HTTP.MaxPageSize))

	if cfg.Files.Retention > 0 {
		sweeper := scheduler.NewFileSweeper(files, cfg.Files.Retention, logger.Component("files"))
		if err := sweeper.Start(cfg.Files.CleanupSchedule); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	e := api.NewRouter(api.Dependencies{
		Logger:       log,
		Auth:         authService,
		Authorizer:   service.NewAuthorizer(repos.users, tokens),
		Tokens:       tokens,
		Users:        service.NewUserService(repos.users, logger.Component("users")),
		Items:        itemService,
		Compute:      service.NewComputeService(cfg.Workers.Compute),
		Exporter:     service.NewExportService(cfg.Workers.ExportRows),
		Files:        files,
		Cache:        responseCache,
		LimiterStore: limiterStore,
		Health:       health,
		Options: api.Options{
			CORSOrigins:   cfg.HTTP.CORSOrigins,
			CacheTTL:      cfg.Cache.TTL,
			IPLimit:       api.RateLimit{Requests: cfg.RateLimit.IPRequests, Period: cfg.RateLimit.IPPeriod},
			UserLimit:     api.RateLimit{Requests: cfg.RateLimit.UserRequests, Period: cfg.RateLimit.UserPeriod},
			MaxUploadSize: cfg.HTTP.MaxUploadSize,
		},
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     otelhttp.NewHandler(e, "storefront-api"),
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Msg("api server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
		dispatcher.Wait()
		log.Info().Msg("api server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			Timeout:      cfg.Postgres.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected and migrated")
		return &repositories{
			users: postgres.NewUserRepository(db),
			items: postgres.NewItemRepository(db),
			ping:  db.PingContext,
			close: closeSQL(db, log),
		}, nil

	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
		return &repositories{
			users: mongo.NewUserRepository(db),
			items: mongo.NewItemRepository(db),
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect failed")
				}
			},
		}, nil

	default:
		log.Warn().Msg("using in-memory repositories, data is lost on restart")
		return &repositories{
			users: memory.NewUserRepository(),
			items: memory.NewItemRepository(),
			close: func(context.Context) {},
		}, nil
	}
}

func closeSQL(db *sql.DB, log zerolog.Logger) func(context.Context) {
	return func(context.Context) {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("postgres close failed")
		}
	}
}

func openFileStore(ctx context.Context, cfg *config.Config) (ports.FileStore, error) {
	if cfg.Files.Backend == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       cfg.Files.S3Bucket,
			Prefix:       cfg.Files.S3Prefix,
			Region:       cfg.Files.S3Region,
			Endpoint:     cfg.Files.S3Endpoint,
			AccessKey:    cfg.Files.S3AccessKey,
			SecretKey:    cfg.Files.S3SecretKey,
			UsePathStyle: cfg.Files.S3UsePathStyle,
		})
	}
	return storage.NewLocalStore(cfg.Files.Dir)
}
