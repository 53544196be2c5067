package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sdko-org/devops-status/internal/config"
	"github.com/sdko-org/devops-status/internal/database"
	"github.com/sdko-org/devops-status/internal/handlers"
	httpserver "github.com/sdko-org/devops-status/internal/http"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.LoadDotEnv(); err != nil {
		logger.WithError(err).Warn(".env file not found, using environment variables")
	}
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	os.Exit(run(logger, cfg, cfg.ListenAddr()))
}

func run(logger *logrus.Logger, cfg *config.Config, addr string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Initialize(ctx, logger, postgresConfig(cfg))
	if err != nil {
		logger.WithError(err).WithField("state", store.State()).Warn("Starting without database connection")
	}

	var limiter *handlers.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = handlers.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
		go limiter.Start(ctx)
	}

	status := handlers.NewStatusHandler(logger, cfg, store)
	router := handlers.NewRouter(logger, status, limiter)
	server := httpserver.New(logger, addr, router)

	logger.WithFields(logrus.Fields{
		"addr":       addr,
		"started_at": time.Now().Format("2006-01-02 15:04:05"),
		"database":   cfg.DatabaseHost + ":" + cfg.DatabasePort + "/" + cfg.DatabaseName,
		"state":      store.State(),
	}).Info("Server starting")

	runErr := server.Run(ctx)
	if err := store.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close database pool")
	}
	if runErr != nil {
		logger.WithError(runErr).Error("Server failed")
		return 1
	}

	logger.Info("Shutting down gracefully, database pool closed")
	return 0
}

func postgresConfig(cfg *config.Config) database.PostgresConfig {
	return database.PostgresConfig{
		User:            cfg.DatabaseUser,
		Password:        cfg.DatabasePassword,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		DBName:          cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MinConns:        config.PoolMinConns,
		MaxConns:        config.PoolMaxConns,
		ConnectAttempts: cfg.ConnectAttempts,
		ConnectDelay:    cfg.ConnectDelay,
	}
}
