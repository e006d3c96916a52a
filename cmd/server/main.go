package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/api"
	"github.com/teamline-app/teamline/internal/auth"
	"github.com/teamline-app/teamline/internal/config"
	"github.com/teamline-app/teamline/internal/hub"
	"github.com/teamline-app/teamline/internal/store"
)

const tokenValidity = 24 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize MongoDB store. Unreachable storage at boot is the one
	// fatal startup condition.
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	mongoStore, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.DatabaseName)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer mongoStore.Close()
	logger.Info().Str("database", cfg.DatabaseName).Msg("connected to MongoDB")

	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("index creation failed")
	}

	// Initialize Redis store (optional, enables rate limiting)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Token authenticator and delivery hub
	authn := auth.NewAuthenticator(cfg.JWTSecret, "teamline", tokenValidity)
	deliveryHub := hub.New(mongoStore, logger)

	// Create router
	router := api.NewRouter(cfg, logger, mongoStore, redisStore, deliveryHub, authn)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("origin", cfg.FrontendOrigin).
			Msg("starting Teamline server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
