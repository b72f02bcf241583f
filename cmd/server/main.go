package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/config"
	"saborconquista/internal/handler"
	"saborconquista/internal/postal"
	"saborconquista/internal/storage"
	"saborconquista/internal/web"
	"saborconquista/internal/workspace"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Token storage ---
	var store storage.Store
	switch cfg.TokenStorage {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = storage.NewRedisStore(client, "saborconquista", 30*24*time.Hour)
	case config.StoragePostgres:
		pool, err := config.ConnectDB(ctx, cfg.DB, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := config.AutoMigrate(ctx, pool); err != nil {
			logger.Fatal("failed to auto-migrate database", zap.Error(err))
		}
		store = storage.NewPostgresStore(pool)
	default:
		store = storage.NewMemoryStore()
	}
	logger.Info("token storage ready", zap.String("backend", cfg.TokenStorage))

	// --- Workspaces ---
	registry := workspace.NewRegistry(workspace.Deps{
		API:          apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger),
		Store:        store,
		Postal:       postal.NewClient(cfg.PostalBaseURL, cfg.PostalTimeout, logger),
		PollInterval: cfg.KitchenPollInterval,
		Logger:       logger,
	}, cfg.WorkspaceIdleTTL)
	defer registry.Close()
	go registry.Run(ctx)

	// --- Router ---
	renderer, err := web.New()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(registry, renderer, handler.RouterConfig{
		CookieSecure: cfg.CookieSecure,
		PhotoBase:    cfg.APIBaseURL,
		PollInterval: cfg.KitchenPollInterval,
	}, logger)

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
