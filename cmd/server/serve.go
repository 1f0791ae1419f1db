package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/vidstream/vidstream-api/internal/api"
	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/internal/logging"
	"github.com/vidstream/vidstream-api/internal/media"
	"github.com/vidstream/vidstream-api/internal/observability"
	"github.com/vidstream/vidstream-api/internal/ratelimit"
	"github.com/vidstream/vidstream-api/internal/repository/postgres"
	"github.com/vidstream/vidstream-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}
	log := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.OutOrStdout(),
	})
	slog.SetDefault(log)
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, log)
	if err != nil {
		logging.LogError(log, "failed to connect to database", err)
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	repos := postgres.NewRepositories(db)

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	store, err := media.NewS3Store(ctx, cfg)
	if err != nil {
		return oops.Code("MEDIA_INIT_FAILED").With("operation", "create media store").Wrap(err)
	}

	metrics := observability.NewMetrics()
	services := service.NewServices(repos, store, limiter, metrics, cfg, log)
	router := api.NewRouter(services, cfg, metrics, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return oops.Code("SERVER_FAILED").With("operation", "listen").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").With("operation", "shutdown").Wrap(err)
	}

	log.Info("server stopped")
	return nil
}

// newLimiter shares login failure counters through Redis when an address is
// configured, otherwise keeps them in process memory.
func newLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("login throttle using process memory")
		return ratelimit.NewMemory(cfg.LoginMaxAttempts, cfg.LoginLockout), func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, oops.Code("REDIS_CONNECT_FAILED").With("operation", "connect to redis").Wrap(err)
	}
	log.Info("login throttle using redis", "addr", cfg.RedisAddr)
	return ratelimit.NewRedis(client, cfg.LoginMaxAttempts, cfg.LoginLockout), func() { client.Close() }, nil
}
