// Command devapi runs the in-memory restaurant backend used for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"saborconquista/internal/config"
	"saborconquista/internal/devapi"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadDevAPI()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	server := devapi.NewServer(devapi.NewRepository(), devapi.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpirationHours), logger)
	if cfg.SeedAdminEmail != "" {
		if err := server.Seed(cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.Fatal("failed to seed data", zap.Error(err))
		}
		logger.Info("seeded manager account", zap.String("email", cfg.SeedAdminEmail))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("dev backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down dev backend")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
