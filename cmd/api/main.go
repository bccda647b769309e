// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/user-service/internal/admin"
	"github.com/carterperez-dev/templates/user-service/internal/auth"
	"github.com/carterperez-dev/templates/user-service/internal/config"
	"github.com/carterperez-dev/templates/user-service/internal/core"
	"github.com/carterperez-dev/templates/user-service/internal/health"
	"github.com/carterperez-dev/templates/user-service/internal/middleware"
	"github.com/carterperez-dev/templates/user-service/internal/migrations"
	"github.com/carterperez-dev/templates/user-service/internal/server"
	"github.com/carterperez-dev/templates/user-service/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db.DB.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	healthDeps := []health.Dependency{{Name: "database", Checker: db}}
	adminCfg := admin.HandlerConfig{
		DBStats: db.Stats,
		DBPing:  db.Ping,
	}

	var rdb *goredis.Client
	cache, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, rate limits are per process",
			"error", err,
		)
	} else {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}()
		rdb = cache.Client
		healthDeps = append(healthDeps, health.Dependency{Name: "redis", Checker: cache})
		adminCfg.RedisStats = cache.PoolStats
		adminCfg.RedisPing = cache.Ping
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	hasher, err := core.NewPasswordHasher(cfg.Security)
	if err != nil {
		return err
	}

	metrics := core.NewMetrics()

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"algorithm", "HS256",
		"key_id", tokens.KeyID(),
		"ttl", tokens.TTL(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, hasher)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(tokens, userSvc, hasher, metrics)
	authHandler := auth.NewHandler(authSvc)

	if cfg.Seed.Enabled {
		created, err := userSvc.Seed(ctx, cfg.Seed.Password)
		if err != nil {
			return err
		}
		logger.Info("demo users seeded", "created", created)
	}

	healthHandler := health.NewHandler(healthDeps...)

	adminCfg.UserCount = userSvc.CountUsers
	adminCfg.Counters = metrics.RouteCounts
	adminHandler := admin.NewHandler(adminCfg)

	globalLimiter := middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen: true,
	})
	loginLimiter := middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.LoginRequests,
			cfg.RateLimit.LoginBurst,
			cfg.RateLimit.Window,
		),
		KeyPrefix: "login:",
		FailOpen:  true,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		Middleware: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Logger(logger),
			middleware.Metrics(metrics),
			middleware.SecurityHeaders(cfg.IsProduction()),
			middleware.CORS(cfg.CORS),
			globalLimiter.Handler,
		},
	})

	router := srv.Router()

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	authenticator := middleware.Authenticator(authSvc)

	authHandler.RegisterRoutes(router, loginLimiter.Handler)
	userHandler.RegisterRoutes(router, authenticator, cfg.Auth.ProtectUserLookup)
	adminHandler.RegisterRoutes(router, authenticator, middleware.RequireAdmin)

	if !cfg.Auth.ProtectUserLookup {
		logger.Warn("GET /user/{id} is served without authentication",
			"setting", "auth.protect_user_lookup",
		)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
